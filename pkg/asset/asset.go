// Package asset turns user-supplied image files into in-memory displayable
// assets. An accepted asset holds the raw bytes, a self-contained data-URI
// encoding usable directly as a render or transport source, and a display
// label derived from the filename.
package asset

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"uilocator/pkg/types"
)

// FallbackLabel is used when a filename stem is empty.
const FallbackLabel = "image"

// Asset is an accepted image held in memory for the session. Exactly one
// asset is current at a time; loading a new one simply replaces it.
type Asset struct {
	Raw     []byte
	DataURI string
	Label   string
	Width   int
	Height  int
}

// Load validates and decodes a user-supplied file. Only media types starting
// with "image/" are accepted; anything else fails with InvalidAssetTypeError
// before the reader is consumed.
func Load(filename, mediaType string, r io.Reader) (*Asset, error) {
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, &types.InvalidAssetTypeError{MediaType: mediaType}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	img, err := DecodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	uri, err := EncodeDataURI(img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", filename, err)
	}

	b := img.Bounds()
	return &Asset{
		Raw:     raw,
		DataURI: uri,
		Label:   Label(filename),
		Width:   b.Dx(),
		Height:  b.Dy(),
	}, nil
}

// LoadFile loads an asset from a path. The media type is taken from the file
// extension and falls back to content sniffing for unknown extensions.
func LoadFile(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		head := make([]byte, 512)
		n, _ := f.Read(head)
		mediaType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	return Load(filepath.Base(path), mediaType, f)
}

// DecodeBytes decodes an image from byte data with WebP support.
func DecodeBytes(data []byte) (image.Image, error) {
	// Try standard image.Decode first
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	// Try WebP decode
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// DecodeFile decodes an image from a path.
func DecodeFile(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// Label derives a display label from a filename by stripping its extension.
func Label(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.TrimSpace(stem)
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return FallbackLabel
	}
	return stem
}
