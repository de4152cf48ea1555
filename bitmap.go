package punkrun

// Bitmap is a row-major RGBA pixel buffer in authoring orientation: Width is
// the number of columns and Height the number of rows. The framebuffer,
// background buffers and decoded images are all Bitmaps.
type Bitmap struct {
	Width, Height int32
	Pix           []Pixel
}

// NewBitmap allocates a bitmap on the heap. Engine state uses AllocBitmap.
func NewBitmap(w, h int32) *Bitmap {
	return &Bitmap{Width: w, Height: h, Pix: make([]Pixel, int(w)*int(h))}
}

// DeclareBitmap reserves arena space for a w×h bitmap.
func DeclareBitmap(a *Arena, w, h int32) {
	AddCount[Pixel](a, int(w)*int(h))
}

// AllocBitmap carves a w×h bitmap out of the arena.
func AllocBitmap(a *Arena, w, h int32) (Bitmap, bool) {
	pix, ok := Push[Pixel](a, int(w)*int(h))
	if !ok {
		return Bitmap{}, false
	}
	return Bitmap{Width: w, Height: h, Pix: pix}, true
}

// Valid reports whether the pixel slice matches the declared dimensions.
func (b *Bitmap) Valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Pix) == int(b.Width)*int(b.Height)
}

// Bounds returns the full bitmap rect.
func (b *Bitmap) Bounds() Rect {
	return Rect{W: b.Width, H: b.Height}
}

// At returns the pixel at column x, row y, or transparent when out of range.
func (b *Bitmap) At(x, y int32) Pixel {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return PixelTransparent
	}
	return b.Pix[int(y)*int(b.Width)+int(x)]
}

// Set writes the pixel at column x, row y. Out-of-range writes are dropped.
func (b *Bitmap) Set(x, y int32, p Pixel) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Pix[int(y)*int(b.Width)+int(x)] = p
}

// Row returns row y as a slice aliasing the bitmap.
func (b *Bitmap) Row(y int32) []Pixel {
	start := int(y) * int(b.Width)
	return b.Pix[start : start+int(b.Width)]
}

// Fill sets every pixel to p.
func (b *Bitmap) Fill(p Pixel) {
	for i := range b.Pix {
		b.Pix[i] = p
	}
}

// Clear fills the bitmap with transparent black.
func (b *Bitmap) Clear() {
	clear(b.Pix)
}

// View returns a view over the whole bitmap.
func (b *Bitmap) View() View {
	return View{Bitmap: b, Rect: b.Bounds()}
}

// SubView returns a view over r clipped to the bitmap bounds.
func (b *Bitmap) SubView(r Rect) View {
	return View{Bitmap: b, Rect: r.Intersect(b.Bounds())}
}

// View is a sub-rectangle of a bitmap. Higher-level views embed it by value.
type View struct {
	Bitmap *Bitmap
	Rect   Rect
}

// Valid reports whether the view references a bitmap and covers pixels.
func (v View) Valid() bool {
	return v.Bitmap != nil && !v.Rect.Empty()
}

// Width returns the view width in columns.
func (v View) Width() int32 { return v.Rect.W }

// Height returns the view height in rows.
func (v View) Height() int32 { return v.Rect.H }

// Mask is a single-channel image. Depending on its asset class its values
// are alpha multipliers or indices into a ColorTable.
type Mask struct {
	Width, Height int32
	Pix           []uint8
}

// DeclareMask reserves arena space for a w×h mask.
func DeclareMask(a *Arena, w, h int32) {
	AddCount[uint8](a, int(w)*int(h))
}

// AllocMask carves a w×h mask out of the arena.
func AllocMask(a *Arena, w, h int32) (Mask, bool) {
	pix, ok := Push[uint8](a, int(w)*int(h))
	if !ok {
		return Mask{}, false
	}
	return Mask{Width: w, Height: h, Pix: pix}, true
}

// ColorTable maps an 8-bit index to a pixel.
type ColorTable [256]Pixel
