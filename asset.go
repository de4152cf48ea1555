package punkrun

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// AssetStatus is the load state of the resident asset blob.
type AssetStatus int32

const (
	AssetNone     AssetStatus = iota // nothing requested yet
	AssetLoading                     // a fetch is in flight
	AssetSuccess                     // blob is resident and passed the self-test
	AssetFailLoad                    // every source failed to deliver bytes
	AssetFailRead                    // bytes arrived but are malformed
)

func (s AssetStatus) String() string {
	switch s {
	case AssetNone:
		return "none"
	case AssetLoading:
		return "loading"
	case AssetSuccess:
		return "success"
	case AssetFailLoad:
		return "fail_load"
	case AssetFailRead:
		return "fail_read"
	default:
		return "unknown"
	}
}

// Failed reports whether s is a terminal failure.
func (s AssetStatus) Failed() bool {
	return s == AssetFailLoad || s == AssetFailRead
}

// AssetData owns the resident asset blob.
//
// The blob is written exactly once, possibly from a loader goroutine. The
// status is the only synchronization point: readers poll Status and touch the
// blob only after it reports AssetSuccess.
type AssetData struct {
	status atomic.Int32
	layout *Layout
	blob   []byte
	err    error
	done   chan struct{}
	debug  debugFlag
}

// NewAssetData creates an empty AssetData for the given layout.
func NewAssetData(layout *Layout) *AssetData {
	return &AssetData{layout: layout, done: make(chan struct{}), debug: debugFlag(defaultDebug)}
}

// Status returns the current load state.
func (d *AssetData) Status() AssetStatus {
	return AssetStatus(d.status.Load())
}

// Layout returns the blob table of contents.
func (d *AssetData) Layout() *Layout {
	return d.layout
}

// Resident reports whether blob bytes are in memory.
func (d *AssetData) Resident() bool {
	return d.Status() == AssetSuccess
}

// Err returns the failure cause once Status reports a failure.
func (d *AssetData) Err() error {
	if !d.Status().Failed() {
		return nil
	}
	return d.err
}

// Done is closed when loading reaches a terminal status.
func (d *AssetData) Done() <-chan struct{} {
	return d.done
}

// beginLoad moves the status from None to Loading. It reports false if a load
// was already started.
func (d *AssetData) beginLoad() bool {
	return d.status.CompareAndSwap(int32(AssetNone), int32(AssetLoading))
}

// finish installs the fetched bytes, or records the fetch error, and
// publishes the terminal status.
func (d *AssetData) finish(blob []byte, fetchErr error) AssetStatus {
	d.debug.assert(d.Status() == AssetLoading, "asset finish in status %s", d.Status())
	status := AssetSuccess
	switch {
	case fetchErr != nil:
		d.err = fetchErr
		status = AssetFailLoad
	default:
		if err := d.validate(blob); err != nil {
			d.err = err
			status = AssetFailRead
		} else {
			d.blob = blob
		}
	}
	d.status.Store(int32(status))
	close(d.done)
	return status
}

// SetResident installs an already-loaded blob synchronously. It is the
// native path where the bytes were read before the first tick.
func (d *AssetData) SetResident(blob []byte) AssetStatus {
	if !d.beginLoad() {
		return d.Status()
	}
	return d.finish(blob, nil)
}

// validate checks the header and runs the self-test against blob.
func (d *AssetData) validate(blob []byte) error {
	if err := d.layout.checkHeader(blob); err != nil {
		return err
	}
	if len(blob) != d.layout.BlobSize() {
		return errors.Wrapf(ErrAssetRead, "blob is %d bytes, layout needs exactly %d", len(blob), d.layout.BlobSize())
	}
	return selfTest(d.layout, blob)
}

// ReadResult is the outcome of decoding one blob entry.
type ReadResult uint8

const (
	ReadOK           ReadResult = iota // decoded
	ReadNotReady                       // the blob is not resident
	ReadNotFound                       // no entry with that name
	ReadWrongClass                     // entry class does not match the destination
	ReadOutOfRange                     // entry extends past the end of the blob
	ReadSizeMismatch                   // destination dimensions differ from the entry
)

func (r ReadResult) String() string {
	switch r {
	case ReadOK:
		return "ok"
	case ReadNotReady:
		return "not_ready"
	case ReadNotFound:
		return "not_found"
	case ReadWrongClass:
		return "wrong_class"
	case ReadOutOfRange:
		return "out_of_range"
	case ReadSizeMismatch:
		return "size_mismatch"
	default:
		return "unknown"
	}
}

// decodeTarget receives one decoded entry. Exactly one field is set,
// matching the entry class.
type decodeTarget struct {
	bitmap *Bitmap
	mask   *Mask
	table  *ColorTable
}

// decodeEntry decodes raw entry bytes into dst according to the entry class.
func decodeEntry(e LayoutEntry, raw []byte, dst decodeTarget) ReadResult {
	if len(raw) != e.Size {
		return ReadOutOfRange
	}
	switch e.Class {
	case ClassImage4:
		b := dst.bitmap
		if b == nil {
			return ReadWrongClass
		}
		if b.Width != e.Width || b.Height != e.Height || len(b.Pix) != int(e.Width)*int(e.Height) {
			return ReadSizeMismatch
		}
		for i := range b.Pix {
			b.Pix[i] = Pixel{R: raw[4*i], G: raw[4*i+1], B: raw[4*i+2], A: raw[4*i+3]}
		}
	case ClassTable4:
		t := dst.table
		if t == nil {
			return ReadWrongClass
		}
		for i := range t {
			t[i] = Pixel{R: raw[4*i], G: raw[4*i+1], B: raw[4*i+2], A: raw[4*i+3]}
		}
	case ClassFilterAlpha, ClassFilterTable:
		m := dst.mask
		if m == nil {
			return ReadWrongClass
		}
		if m.Width != e.Width || m.Height != e.Height || len(m.Pix) != len(raw) {
			return ReadSizeMismatch
		}
		copy(m.Pix, raw)
	default:
		return ReadWrongClass
	}
	return ReadOK
}

// entry resolves name to its layout entry and raw bytes.
func (d *AssetData) entry(name string) (LayoutEntry, []byte, ReadResult) {
	if d.Status() != AssetSuccess {
		return LayoutEntry{}, nil, ReadNotReady
	}
	e, ok := d.layout.Entry(name)
	if !ok {
		return LayoutEntry{}, nil, ReadNotFound
	}
	if e.Offset+e.Size > len(d.blob) {
		return e, nil, ReadOutOfRange
	}
	return e, d.blob[e.Offset : e.Offset+e.Size], ReadOK
}

// ReadImage decodes the named RGBA image into dst. A missing name fills dst
// with magenta so the gap is visible on screen.
func (d *AssetData) ReadImage(name string, dst *Bitmap) ReadResult {
	e, raw, res := d.entry(name)
	if res == ReadNotFound {
		dst.Fill(PixelMagenta)
	}
	if res != ReadOK {
		return res
	}
	if e.Class != ClassImage4 {
		return ReadWrongClass
	}
	return decodeEntry(e, raw, decodeTarget{bitmap: dst})
}

// ReadMask decodes the named single-channel mask into dst.
func (d *AssetData) ReadMask(name string, dst *Mask) ReadResult {
	e, raw, res := d.entry(name)
	if res != ReadOK {
		return res
	}
	if e.Class != ClassFilterAlpha && e.Class != ClassFilterTable {
		return ReadWrongClass
	}
	return decodeEntry(e, raw, decodeTarget{mask: dst})
}

// ReadTable decodes the named color table into dst.
func (d *AssetData) ReadTable(name string, dst *ColorTable) ReadResult {
	e, raw, res := d.entry(name)
	if res != ReadOK {
		return res
	}
	if e.Class != ClassTable4 {
		return ReadWrongClass
	}
	return decodeEntry(e, raw, decodeTarget{table: dst})
}

// selfTest checks each directory record against the layout, then decodes
// every declared entry into scratch storage of the declared dimensions.
func selfTest(l *Layout, blob []byte) error {
	if n := blobHeaderSize + len(l.Entries)*dirRecordSize; len(blob) < n {
		return errors.Wrapf(ErrAssetRead, "blob is %d bytes, directory needs %d", len(blob), n)
	}
	for i, e := range l.Entries {
		if err := l.checkDirectory(blob, i); err != nil {
			return err
		}
		if e.Offset+e.Size > len(blob) {
			return errors.Wrapf(ErrAssetRead, "entry %q ends at %d past blob end %d", e.Name, e.Offset+e.Size, len(blob))
		}
		raw := blob[e.Offset : e.Offset+e.Size]
		var dst decodeTarget
		switch e.Class {
		case ClassImage4:
			dst.bitmap = NewBitmap(e.Width, e.Height)
		case ClassTable4:
			dst.table = new(ColorTable)
		case ClassFilterAlpha, ClassFilterTable:
			dst.mask = &Mask{Width: e.Width, Height: e.Height, Pix: make([]uint8, int(e.Width)*int(e.Height))}
		}
		if res := decodeEntry(e, raw, dst); res != ReadOK {
			return errors.Wrapf(ErrAssetRead, "entry %q (%s %dx%d): %s", e.Name, e.Class, e.Width, e.Height, res)
		}
	}
	return nil
}
