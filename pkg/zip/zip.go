// Package zip builds the in-memory archives served by the creative export
// endpoint.
package zip

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Asset is one downloaded creative destined for an archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ExtensionForMIME maps an image content type to a filename extension.
// Anything unrecognised is treated as JPEG, which is what the generation
// providers return by default.
func ExtensionForMIME(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return ".png"
	case strings.Contains(mime, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}

// ArchiveAssets packs the assets into a single zip held in memory. A nil
// return means a write failed and the archive should not be served.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			return nil
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	if err := zw.Close(); err != nil {
		return nil
	}
	return buf.Bytes()
}
