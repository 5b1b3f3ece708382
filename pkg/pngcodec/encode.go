package pngcodec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

const (
	colorTypeRGBA = 6
	bitDepth8     = 8
	filterNone    = 0
)

// writeRGBA writes a PNG with colour type 6 (truecolour with alpha), 8 bits per
// channel, regardless of whether the image is opaque. image/png narrows opaque
// images to RGB, which readers expecting RGBA8 cannot consume directly.
func writeRGBA(w io.Writer, img *RawImage) error {
	if _, err := w.Write(pngSignature); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(img.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(img.Height))
	ihdr[8] = bitDepth8
	ihdr[9] = colorTypeRGBA
	// compression, filter, interlace: all 0
	if err := writeChunk(w, "IHDR", ihdr[:]); err != nil {
		return err
	}

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.DefaultCompression)
	if err != nil {
		return err
	}
	stride := img.Width * 4
	for y := 0; y < img.Height; y++ {
		if _, err := zw.Write([]byte{filterNone}); err != nil {
			return err
		}
		if _, err := zw.Write(img.Pixels[y*stride : (y+1)*stride]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := writeChunk(w, "IDAT", idat.Bytes()); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

func writeChunk(w io.Writer, name string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(data)))
	copy(header[4:8], name)

	crc := crc32.NewIEEE()
	crc.Write(header[4:8])
	crc.Write(data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(footer[:])
	return err
}
