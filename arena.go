package punkrun

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// bucket selects one of the arena's flat buffers by element size.
type bucket uint8

const (
	bucket8    bucket = iota // 1-byte elements
	bucket16                 // 2-byte elements
	bucket32                 // 4-byte elements
	bucket64                 // 8-byte elements
	bucketMisc               // everything larger, 8-byte aligned per request
	bucketCount
)

var bucketNames = [bucketCount]string{"u8", "u16", "u32", "u64", "misc"}

func (b bucket) String() string { return bucketNames[b] }

// miscAlign is the alignment of every request served from the misc bucket.
const miscAlign = 8

type arenaBucket struct {
	declared int // bytes
	buf      []byte
	cursor   int
}

// Arena is a one-shot bump allocator backing the engine's state.
//
// Use is two-phase. First every consumer declares how many elements of each
// type it will need with AddCount. Create then allocates zeroed buffers sized
// exactly to the declared totals. After that Push hands out contiguous slices
// until a bucket runs dry. There is no individual free; Destroy releases all
// buckets together.
//
// Element types must not contain pointers: buckets are plain byte memory the
// garbage collector does not scan.
type Arena struct {
	buckets  [bucketCount]arenaBucket
	maxBytes int
	created  bool
	debug    debugFlag
}

// NewArena returns an empty arena in the declaration phase. maxBytes caps the
// total size Create may allocate; zero means no cap.
func NewArena(maxBytes int) *Arena {
	return &Arena{maxBytes: maxBytes, debug: debugFlag(defaultDebug)}
}

// bucketFor maps an element size to its bucket.
func bucketFor(size uintptr) bucket {
	switch size {
	case 1:
		return bucket8
	case 2:
		return bucket16
	case 4:
		return bucket32
	case 8:
		return bucket64
	default:
		return bucketMisc
	}
}

// requestBytes returns the number of bucket bytes n elements of size consume.
func requestBytes(b bucket, size uintptr, n int) int {
	bytes := int(size) * n
	if b == bucketMisc {
		bytes = (bytes + miscAlign - 1) &^ (miscAlign - 1)
	}
	return bytes
}

// AddCount declares that n more elements of T will be pushed after Create.
// Calling it after Create, or with a pointer-carrying T, is an invariant
// violation.
func AddCount[T any](a *Arena, n int) {
	var zero T
	a.debug.assert(!a.created, "AddCount[%T] after Create", zero)
	a.debug.assert(n >= 0, "AddCount[%T] negative count %d", zero, n)
	a.debug.assert(pointerFree(reflect.TypeOf(zero)), "AddCount[%T]: element type holds pointers", zero)
	if a.created || n <= 0 {
		return
	}
	size := unsafe.Sizeof(zero)
	b := bucketFor(size)
	a.buckets[b].declared += requestBytes(b, size, n)
}

// Create allocates every bucket sized to its declared total. It fails
// atomically: on error no bucket stays allocated.
func (a *Arena) Create() error {
	if a.created {
		return errors.Wrap(ErrAllocation, "arena already created")
	}
	total := a.DeclaredBytes()
	if a.maxBytes > 0 && total > a.maxBytes {
		a.Destroy()
		return errors.Wrapf(ErrAllocation, "arena needs %d bytes, limit is %d", total, a.maxBytes)
	}
	for i := range a.buckets {
		b := &a.buckets[i]
		if b.declared == 0 {
			continue
		}
		// Backed by uint64 words so every bucket starts 8-byte aligned.
		words := make([]uint64, (b.declared+7)/8)
		b.buf = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), b.declared)
		b.cursor = 0
	}
	a.created = true
	return nil
}

// Push returns n contiguous zeroed elements of T, bumping the bucket cursor.
// ok is false if the arena was not created or the bucket is exhausted.
func Push[T any](a *Arena, n int) (s []T, ok bool) {
	if !a.created || n < 0 {
		return nil, false
	}
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return make([]T, n), true
	}
	b := &a.buckets[bucketFor(size)]
	need := requestBytes(bucketFor(size), size, n)
	if b.cursor+need > len(b.buf) {
		return nil, false
	}
	if n == 0 {
		return []T{}, true
	}
	p := unsafe.Pointer(&b.buf[b.cursor])
	b.cursor += need
	return unsafe.Slice((*T)(p), n), true
}

// Destroy releases every bucket. The arena cannot be used afterwards.
func (a *Arena) Destroy() {
	for i := range a.buckets {
		a.buckets[i] = arenaBucket{}
	}
	a.created = false
}

// Created reports whether Create succeeded and Destroy has not been called.
func (a *Arena) Created() bool {
	return a.created
}

// DeclaredBytes returns the sum of all declared bucket sizes.
func (a *Arena) DeclaredBytes() int {
	total := 0
	for i := range a.buckets {
		total += a.buckets[i].declared
	}
	return total
}

// ArenaStats reports per-bucket declared and consumed bytes.
type ArenaStats struct {
	Declared [bucketCount]int
	Used     [bucketCount]int
}

// Stats returns a snapshot of bucket usage.
func (a *Arena) Stats() ArenaStats {
	var s ArenaStats
	for i := range a.buckets {
		s.Declared[i] = a.buckets[i].declared
		s.Used[i] = a.buckets[i].cursor
	}
	return s
}

// pointerFree reports whether values of t can live in memory the garbage
// collector does not scan.
func pointerFree(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
