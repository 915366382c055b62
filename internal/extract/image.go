package extract

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// probeImage reports whether data decodes as a raster image and returns the
// format name. Only the header is decoded; vector formats (EMF, WMF, SVG)
// are rejected.
func probeImage(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return "", false
	}
	return format, true
}
