package punkrun

import (
	_ "embed"
	"encoding/binary"
	"hash/fnv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AssetClass is the pixel format of one blob entry. The set is closed.
type AssetClass uint8

const (
	ClassImage4      AssetClass = iota + 1 // RGBA image, 4 bytes per pixel
	ClassTable4                            // 256-entry RGBA color table
	ClassFilterAlpha                       // 1-channel alpha multiplier mask
	ClassFilterTable                       // 1-channel color-table index mask
)

var classNames = map[string]AssetClass{
	"image4":       ClassImage4,
	"table4":       ClassTable4,
	"filter_alpha": ClassFilterAlpha,
	"filter_table": ClassFilterTable,
}

func (c AssetClass) String() string {
	for name, v := range classNames {
		if v == c {
			return name
		}
	}
	return "unknown"
}

// Channels returns the bytes per pixel of the class.
func (c AssetClass) Channels() int {
	switch c {
	case ClassImage4, ClassTable4:
		return 4
	case ClassFilterAlpha, ClassFilterTable:
		return 1
	default:
		return 0
	}
}

// UnmarshalYAML parses a class name.
func (c *AssetClass) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, ok := classNames[s]
	if !ok {
		return errors.Errorf("unknown asset class %q (line %d)", s, value.Line)
	}
	*c = v
	return nil
}

// Blob header: 4-byte magic followed by a little-endian uint32 version.
// The header is followed by one directory record per entry: FNV-1a hash of
// the entry name, class, width and height, each a little-endian uint32.
const (
	blobMagic      = "PKRN"
	blobHeaderSize = 8
	dirRecordSize  = 16
)

// LayoutEntry locates one sub-image inside the asset blob.
type LayoutEntry struct {
	Name   string     `yaml:"name"`
	Class  AssetClass `yaml:"class"`
	Width  int32      `yaml:"width"`
	Height int32      `yaml:"height"`
	Offset int        `yaml:"-"`
	Size   int        `yaml:"-"`
}

// Layout is the blob's table of contents. Offsets are assigned by packing
// entries in declaration order after the header and directory, so the table is fixed at
// build time by the embedded manifest.
type Layout struct {
	Version uint32        `yaml:"version"`
	Entries []LayoutEntry `yaml:"entries"`

	index map[string]int
	size  int
}

//go:embed assets/layout.yaml
var defaultLayoutYAML []byte

// DefaultLayout returns the layout compiled into the binary.
func DefaultLayout() *Layout {
	l, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		panic("punkrun: embedded layout: " + err.Error())
	}
	return l
}

// ParseLayout decodes a YAML layout manifest and assigns entry offsets.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(err, "punkrun: parse layout")
	}
	if len(l.Entries) == 0 {
		return nil, errors.New("punkrun: layout has no entries")
	}
	l.index = make(map[string]int, len(l.Entries))
	offset := blobHeaderSize + len(l.Entries)*dirRecordSize
	for i := range l.Entries {
		e := &l.Entries[i]
		if e.Name == "" {
			return nil, errors.Errorf("punkrun: layout entry %d has no name", i)
		}
		if _, dup := l.index[e.Name]; dup {
			return nil, errors.Errorf("punkrun: duplicate layout entry %q", e.Name)
		}
		if e.Class == 0 {
			return nil, errors.Errorf("punkrun: layout entry %q has no class", e.Name)
		}
		if e.Width <= 0 || e.Height <= 0 {
			return nil, errors.Errorf("punkrun: layout entry %q has size %dx%d", e.Name, e.Width, e.Height)
		}
		if e.Class == ClassTable4 && int(e.Width)*int(e.Height) != len(ColorTable{}) {
			return nil, errors.Errorf("punkrun: table entry %q must have 256 entries", e.Name)
		}
		e.Offset = offset
		e.Size = int(e.Width) * int(e.Height) * e.Class.Channels()
		offset += e.Size
		l.index[e.Name] = i
	}
	l.size = offset
	return &l, nil
}

// Entry returns the entry with the given name.
func (l *Layout) Entry(name string) (LayoutEntry, bool) {
	i, ok := l.index[name]
	if !ok {
		return LayoutEntry{}, false
	}
	return l.Entries[i], true
}

// BlobSize returns the exact size of a blob matching the layout.
func (l *Layout) BlobSize() int {
	return l.size
}

// checkHeader validates the magic and version stamp of blob.
func (l *Layout) checkHeader(blob []byte) error {
	if len(blob) < blobHeaderSize || string(blob[:4]) != blobMagic {
		return errors.Wrap(ErrAssetRead, "missing blob header")
	}
	if v := binary.LittleEndian.Uint32(blob[4:8]); v != l.Version {
		return errors.Wrapf(ErrAssetVersion, "blob version %d, want %d", v, l.Version)
	}
	return nil
}

// putHeader writes the magic and version stamp into blob.
func (l *Layout) putHeader(blob []byte) {
	copy(blob[:4], blobMagic)
	binary.LittleEndian.PutUint32(blob[4:8], l.Version)
}

// putDirectory writes one directory record per entry after the header.
func (l *Layout) putDirectory(blob []byte) {
	for i, e := range l.Entries {
		rec := blob[blobHeaderSize+i*dirRecordSize:]
		binary.LittleEndian.PutUint32(rec[0:4], nameHash(e.Name))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(e.Class))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(e.Width))
		binary.LittleEndian.PutUint32(rec[12:16], uint32(e.Height))
	}
}

// checkDirectory compares the directory record of entry i with what the
// layout declares for it.
func (l *Layout) checkDirectory(blob []byte, i int) error {
	e := l.Entries[i]
	rec := blob[blobHeaderSize+i*dirRecordSize:]
	if h := binary.LittleEndian.Uint32(rec[0:4]); h != nameHash(e.Name) {
		return errors.Wrapf(ErrAssetRead, "directory record %d does not name entry %q", i, e.Name)
	}
	if c := AssetClass(binary.LittleEndian.Uint32(rec[4:8])); c != e.Class {
		return errors.Wrapf(ErrAssetRead, "entry %q is %s in the blob, layout declares %s", e.Name, c, e.Class)
	}
	w := int32(binary.LittleEndian.Uint32(rec[8:12]))
	h := int32(binary.LittleEndian.Uint32(rec[12:16]))
	if w != e.Width || h != e.Height {
		return errors.Wrapf(ErrAssetRead, "entry %q is %dx%d in the blob, layout declares %dx%d",
			e.Name, w, h, e.Width, e.Height)
	}
	return nil
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}
