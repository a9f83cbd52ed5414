// Package imaging classifies image files by extension and re-encodes them
// with a bounded edge length for attaching.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/bdrennan/mailkit/internal/fileset"
)

// DefaultMaxEdge is the default bound on the longer edge of an attached
// image, in pixels.
const DefaultMaxEdge = 1024

// jpegQuality is the encode quality used when re-encoding jpeg attachments.
const jpegQuality = 90

// imageSuffixes is the extension whitelist deciding image-ness. Matching is
// case-insensitive; no content sniffing is performed.
var imageSuffixes = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"tiff": {},
	"bmp":  {},
	"gif":  {},
}

// IsImage reports whether the file at path is an image, judged purely by
// its filename extension. A missing path yields a *fileset.NotFoundError.
func IsImage(path string) (bool, error) {
	if !fileset.Exists(path) {
		return false, &fileset.NotFoundError{Path: path}
	}
	_, ok := imageSuffixes[strings.ToLower(fileset.Suffix(path))]
	return ok, nil
}

// EncodeBounded reads the image at path and returns it re-encoded in the
// container implied by its extension. When the longer edge exceeds maxEdge
// pixels, both dimensions are scaled uniformly by maxEdge/longest first;
// smaller images keep their dimensions. maxEdge values below 1 fall back to
// DefaultMaxEdge.
func EncodeBounded(path string, maxEdge int) ([]byte, error) {
	if maxEdge < 1 {
		maxEdge = DefaultMaxEdge
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &fileset.NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	if scaled := scaleDown(img, maxEdge); scaled != nil {
		img = scaled
	}

	return encode(img, strings.ToLower(fileset.Suffix(path)))
}

// scaleDown returns img uniformly rescaled so its longer edge equals
// maxEdge, or nil when no rescale is needed.
func scaleDown(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxEdge {
		return nil
	}

	scale := float64(maxEdge) / float64(longest)
	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// encode serializes img in the container named by suffix.
func encode(img image.Image, suffix string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch suffix {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("unsupported image container %q", suffix)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", suffix, err)
	}
	return buf.Bytes(), nil
}
