// Package pngcodec converts raw RGBA8 pixel buffers to and from PNG byte streams.
package pngcodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// RawImage is a tightly packed RGBA8 raster, rows top to bottom.
// len(Pixels) must equal Width*Height*4.
type RawImage struct {
	Width  int
	Height int
	Pixels []byte
}

// New allocates a zeroed (transparent black) image.
func New(width, height int) *RawImage {
	return &RawImage{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*4),
	}
}

// Validate checks dimensions and buffer length.
func (img *RawImage) Validate() error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return ErrEmptyImage
	}
	if len(img.Pixels) != img.Width*img.Height*4 {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrPixelLength, len(img.Pixels), img.Width*img.Height*4)
	}
	return nil
}

// Clone returns a deep copy that shares no memory with img.
func (img *RawImage) Clone() *RawImage {
	out := &RawImage{Width: img.Width, Height: img.Height, Pixels: make([]byte, len(img.Pixels))}
	copy(out.Pixels, img.Pixels)
	return out
}

// At returns the RGBA bytes of pixel (x, y).
func (img *RawImage) At(x, y int) [4]byte {
	i := (y*img.Width + x) * 4
	return [4]byte{img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2], img.Pixels[i+3]}
}

// Set writes the RGBA bytes of pixel (x, y).
func (img *RawImage) Set(x, y int, c [4]byte) {
	i := (y*img.Width + x) * 4
	copy(img.Pixels[i:i+4], c[:])
}

// ToImage wraps a copy of the pixels as a non-premultiplied image.
func (img *RawImage) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(out.Pix, img.Pixels)
	return out
}

// FromImage converts any decoded image into a RawImage. Colour models other than
// NRGBA (grey, paletted, RGB, 16-bit) are expanded to 8-bit RGBA with opaque alpha
// where the source has none.
func FromImage(src image.Image) (*RawImage, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}
	out := New(b.Dx(), b.Dy())
	stride := out.Width * 4

	// Non-premultiplied sources are copied byte for byte; going through
	// draw would premultiply and lose colour in low-alpha pixels.
	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < out.Height; y++ {
			i := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pixels[y*stride:(y+1)*stride], s.Pix[i:i+stride])
		}
		return out, nil
	case *image.NRGBA64:
		for y := 0; y < out.Height; y++ {
			i := s.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < stride; x++ {
				out.Pixels[y*stride+x] = s.Pix[i+2*x]
			}
		}
		return out, nil
	}

	dst := &image.NRGBA{Pix: out.Pixels, Stride: stride, Rect: image.Rect(0, 0, out.Width, out.Height)}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return out, nil
}

// EncodePNG encodes img as an 8-bit RGBA PNG.
func EncodePNG(img *RawImage) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes img to w as an 8-bit RGBA PNG.
func Encode(w io.Writer, img *RawImage) error {
	if err := img.Validate(); err != nil {
		return &CodecError{Op: "encode", Err: err}
	}
	if err := writeRGBA(w, img); err != nil {
		return &CodecError{Op: "encode", Err: err}
	}
	return nil
}

// DecodePNG decodes a PNG stream of any colour type and bit depth into RGBA8.
func DecodePNG(data []byte) (*RawImage, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a PNG stream from r into RGBA8.
func Decode(r io.Reader) (*RawImage, error) {
	src, err := png.Decode(r)
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: classify(err)}
	}
	img, err := FromImage(src)
	if err != nil {
		return nil, &CodecError{Op: "decode", Err: err}
	}
	return img, nil
}

func classify(err error) error {
	switch err.(type) {
	case png.UnsupportedError:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	case png.FormatError:
		return fmt.Errorf("%w: %v", ErrMalformedImageData, err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: truncated stream", ErrMalformedImageData)
	}
	return fmt.Errorf("%w: %v", ErrMalformedImageData, err)
}

// Resize scales img so that neither side exceeds maxSize, keeping the aspect
// ratio. Images already within bounds, or maxSize <= 0, are returned unchanged.
// An invalid img is rejected whatever maxSize is.
func Resize(img *RawImage, maxSize int) (*RawImage, error) {
	if err := img.Validate(); err != nil {
		return nil, &CodecError{Op: "resize", Err: err}
	}
	if maxSize <= 0 || (img.Width <= maxSize && img.Height <= maxSize) {
		return img, nil
	}
	w, h := img.Width, img.Height
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := img.ToImage()
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &RawImage{Width: w, Height: h, Pixels: dst.Pix}, nil
}
