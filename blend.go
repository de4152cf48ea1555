package punkrun

// Quantized alpha levels that take a shift-and-add path instead of the
// general linear blend. Content authored with these alphas composites faster.
const (
	alphaQuarter      = 64
	alphaHalf         = 128
	alphaThreeQuarter = 192
)

// blendPixel composites src over dst (source-over, straight alpha).
//
//	a == 0    -> dst unchanged
//	a == 255  -> dst = src
//	64/128/192 -> fixed-weight averages
//	otherwise -> dst + (src-dst)*a/255
func blendPixel(dst *Pixel, src Pixel) {
	a := src.A
	switch a {
	case 0:
		return
	case 255:
		*dst = src
		return
	case alphaQuarter:
		dst.R = uint8((uint16(src.R) + 3*uint16(dst.R)) >> 2)
		dst.G = uint8((uint16(src.G) + 3*uint16(dst.G)) >> 2)
		dst.B = uint8((uint16(src.B) + 3*uint16(dst.B)) >> 2)
	case alphaHalf:
		dst.R = uint8((uint16(src.R) + uint16(dst.R)) >> 1)
		dst.G = uint8((uint16(src.G) + uint16(dst.G)) >> 1)
		dst.B = uint8((uint16(src.B) + uint16(dst.B)) >> 1)
	case alphaThreeQuarter:
		dst.R = uint8((3*uint16(src.R) + uint16(dst.R)) >> 2)
		dst.G = uint8((3*uint16(src.G) + uint16(dst.G)) >> 2)
		dst.B = uint8((3*uint16(src.B) + uint16(dst.B)) >> 2)
	default:
		dst.R = lerp8(dst.R, src.R, a)
		dst.G = lerp8(dst.G, src.G, a)
		dst.B = lerp8(dst.B, src.B, a)
	}
	dst.A = a + mul8(dst.A, 255-a)
}

// lerp8 blends from d toward s by a/255, rounding to nearest.
func lerp8(d, s, a uint8) uint8 {
	return uint8((uint32(s)*uint32(a) + uint32(d)*uint32(255-a) + 127) / 255)
}

// mul8 returns x*y/255 rounded to nearest.
func mul8(x, y uint8) uint8 {
	t := uint32(x)*uint32(y) + 128
	return uint8((t + t>>8) >> 8)
}

// composite blends the srcRect pixels of src onto the dstRect pixels of dst.
// Both rects must already be clipped and of equal size. opacity scales the
// source alpha; 255 leaves it untouched.
func composite(dst *Bitmap, dstRect Rect, src *Bitmap, srcRect Rect, opacity uint8) {
	if opacity == 0 {
		return
	}
	for row := int32(0); row < dstRect.H; row++ {
		d := dst.Row(dstRect.Y + row)[dstRect.X : dstRect.X+dstRect.W]
		s := src.Row(srcRect.Y + row)[srcRect.X : srcRect.X+srcRect.W]
		if opacity == 255 {
			for i := range d {
				blendPixel(&d[i], s[i])
			}
			continue
		}
		for i := range d {
			p := s[i]
			p.A = mul8(p.A, opacity)
			blendPixel(&d[i], p)
		}
	}
}
