package capture

import "image"

// Every frame is downsampled to this resolution before classification,
// regardless of the source stream resolution. The detector geometry in
// the vision package is calibrated against it.
const (
	SampleWidth  = 640
	SampleHeight = 360
)

// Sample produces a fixed-resolution snapshot of img using
// nearest-neighbor scaling. Returns nil if img is nil or empty.
func Sample(img image.Image) *Frame {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}

	frame := &Frame{
		Width:  SampleWidth,
		Height: SampleHeight,
		Pix:    make([]byte, SampleWidth*SampleHeight*4),
	}

	for y := 0; y < SampleHeight; y++ {
		srcY := bounds.Min.Y + y*srcH/SampleHeight
		for x := 0; x < SampleWidth; x++ {
			srcX := bounds.Min.X + x*srcW/SampleWidth
			r, g, b, a := img.At(srcX, srcY).RGBA()
			i := (y*SampleWidth + x) * 4
			frame.Pix[i] = uint8(r >> 8)
			frame.Pix[i+1] = uint8(g >> 8)
			frame.Pix[i+2] = uint8(b >> 8)
			frame.Pix[i+3] = uint8(a >> 8)
		}
	}

	return frame
}
