package ingest

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/gen2brain/avif" // register avif decoder
	_ "golang.org/x/image/webp"   // register webp decoder
)

// imageDataURL turns a stored image into a base64 data URL. webp and
// avif are re-encoded to PNG because the service does not accept them;
// everything else passes through unchanged.
func imageDataURL(path, mediaType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".webp" || ext == ".avif" {
		img, err := imaging.Open(path)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return "", err
		}
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "data:" + imageMediaType(ext, mediaType) + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// imageMediaType picks the label for a pass-through image. image/jpg is
// not a registered type; the canonical label is image/jpeg.
func imageMediaType(ext, declared string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	if strings.HasPrefix(mt, "image/") {
		return mt
	}
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
