package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/meshport/pkg/encoding"
	"github.com/Faultbox/meshport/pkg/pngcodec"
)

// Format names returned by Sniff.
const (
	FormatPNG     = "png"
	FormatTGA     = "tga"
	FormatUnknown = ""
)

// Sniff identifies the image format of data from its magic bytes. TGA has no
// signature, so it is recognised by the file name extension only.
func Sniff(name string, data []byte) string {
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		return kind.Extension
	}
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return FormatTGA
	}
	return FormatUnknown
}

// Decode converts an encoded texture to a raw RGBA8 image.
func Decode(name string, data []byte) (*pngcodec.RawImage, error) {
	switch format := Sniff(name, data); format {
	case FormatPNG:
		return pngcodec.DecodePNG(data)
	case FormatTGA:
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, err
		}
		return pngcodec.FromImage(img)
	case "jpg", "gif", "bmp", "tif", "webp":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
		return pngcodec.FromImage(img)
	case FormatUnknown:
		return nil, fmt.Errorf("unrecognised image format")
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}
}

// FileLoader reads textures from disk. Relative paths are resolved against
// BaseDir. Images larger than MaxSize on either side are downscaled.
type FileLoader struct {
	BaseDir string
	MaxSize int
}

// Resolve returns the file path a material texture reference points to.
func (l FileLoader) Resolve(ref string) string {
	p := filepath.FromSlash(encoding.NormalizePath(ref))
	if filepath.IsAbs(p) || l.BaseDir == "" {
		return p
	}
	return filepath.Join(l.BaseDir, p)
}

// Load reads and decodes the texture referenced by ref.
func (l FileLoader) Load(ref string) (*pngcodec.RawImage, error) {
	path := l.Resolve(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if l.MaxSize > 0 {
		if img, err = pngcodec.Resize(img, l.MaxSize); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return img, nil
}
