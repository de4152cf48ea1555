package punkrun

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	if l.Version == 0 {
		t.Error("embedded layout has no version")
	}
	e, ok := l.Entry("far_table")
	if !ok || e.Class != ClassTable4 || e.Size != 1024 {
		t.Errorf("far_table = %+v %v", e, ok)
	}
	for _, name := range []string{"far", "near"} {
		n, w, h, ok := LayerVariants(l, name)
		if !ok || n < 2 {
			t.Errorf("layer %s: %d variants", name, n)
		}
		if w != 180 || h != 320 {
			t.Errorf("layer %s: %dx%d, want 180x320", name, w, h)
		}
	}
	for _, name := range bitmapNames {
		if _, ok := l.Entry(name); !ok {
			t.Errorf("layout has no %s entry", name)
		}
	}
}

func TestParseLayoutOffsets(t *testing.T) {
	l, err := ParseLayout([]byte(`
version: 2
entries:
  - {name: a, class: image4, width: 2, height: 3}
  - {name: b, class: filter_alpha, width: 5, height: 1}
  - {name: c, class: table4, width: 16, height: 16}
`))
	if err != nil {
		t.Fatal(err)
	}
	dataStart := blobHeaderSize + 3*dirRecordSize
	tests := []struct {
		name         string
		offset, size int
	}{
		{"a", dataStart, 24},
		{"b", dataStart + 24, 5},
		{"c", dataStart + 29, 1024},
	}
	for _, tt := range tests {
		e, ok := l.Entry(tt.name)
		if !ok {
			t.Fatalf("no entry %s", tt.name)
		}
		if e.Offset != tt.offset || e.Size != tt.size {
			t.Errorf("%s: offset %d size %d, want %d %d", tt.name, e.Offset, e.Size, tt.offset, tt.size)
		}
	}
	if l.BlobSize() != dataStart+29+1024 {
		t.Errorf("BlobSize = %d", l.BlobSize())
	}
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name, yaml string
	}{
		{"not yaml", "{{{"},
		{"no entries", "version: 1\nentries: []\n"},
		{"unknown class", "version: 1\nentries:\n  - {name: a, class: image8, width: 1, height: 1}\n"},
		{"missing class", "version: 1\nentries:\n  - {name: a, width: 1, height: 1}\n"},
		{"missing name", "version: 1\nentries:\n  - {class: image4, width: 1, height: 1}\n"},
		{"zero size", "version: 1\nentries:\n  - {name: a, class: image4, width: 0, height: 1}\n"},
		{"duplicate", "version: 1\nentries:\n  - {name: a, class: image4, width: 1, height: 1}\n  - {name: a, class: image4, width: 1, height: 1}\n"},
		{"short table", "version: 1\nentries:\n  - {name: a, class: table4, width: 16, height: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLayout([]byte(tt.yaml)); err == nil {
				t.Error("ParseLayout succeeded")
			}
		})
	}
}

func TestCheckHeader(t *testing.T) {
	l := testLayerLayout(t, 1)
	good := BuildBlob(l, nil)
	if err := l.checkHeader(good); err != nil {
		t.Fatalf("checkHeader(good) = %v", err)
	}

	badMagic := append([]byte(nil), good...)
	copy(badMagic, "NOPE")
	if err := l.checkHeader(badMagic); !errors.Is(err, ErrAssetRead) {
		t.Errorf("bad magic: %v, want ErrAssetRead", err)
	}

	badVersion := append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(badVersion[4:], l.Version+1)
	if err := l.checkHeader(badVersion); !errors.Is(err, ErrAssetVersion) {
		t.Errorf("bad version: %v, want ErrAssetVersion", err)
	}

	if err := l.checkHeader(good[:5]); !errors.Is(err, ErrAssetRead) {
		t.Errorf("truncated header: %v, want ErrAssetRead", err)
	}
}

func TestAssetClassChannels(t *testing.T) {
	tests := []struct {
		c    AssetClass
		want int
	}{
		{ClassImage4, 4},
		{ClassTable4, 4},
		{ClassFilterAlpha, 1},
		{ClassFilterTable, 1},
		{AssetClass(0), 0},
	}
	for _, tt := range tests {
		if got := tt.c.Channels(); got != tt.want {
			t.Errorf("%s.Channels() = %d, want %d", tt.c, got, tt.want)
		}
	}
}
