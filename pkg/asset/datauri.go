package asset

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

const pngURIPrefix = "data:image/png;base64,"

// EncodeDataURI re-encodes an image as a PNG data URI. The result embeds both
// format and bytes, so it can be displayed or transported without any
// external lookup.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return "", err
	}
	return pngURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURI decodes an image from a data URI. Bare base64 payloads
// without the "data:...;base64," prefix are accepted too, matching the
// backend's own lenient handling.
func DecodeDataURI(s string) (image.Image, error) {
	if i := strings.Index(s, "base64,"); i >= 0 {
		s = s[i+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return DecodeBytes(data)
}
