package pngcodec

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	ErrEmptyImage         = errors.New("image has zero width or height")
	ErrPixelLength        = errors.New("pixel buffer length does not match width*height*4")
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrMalformedImageData = errors.New("malformed image data")
)

// CodecError reports a failed encode, decode or resize.
type CodecError struct {
	Op  string // "encode", "decode" or "resize"
	Err error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("png %s: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
