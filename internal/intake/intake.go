// Package intake resolves image references and measures their natural size.
package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
)

// ErrNotImage is returned when a reference does not hold a decodable image
var ErrNotImage = errors.New("not an image")

// Image is a probed image reference
type Image struct {
	Ref    string
	Format string // png, jpeg or gif
	Width  int
	Height int
	Tint   string // Average colour as #rrggbb, used by the renderer
}

// Result is delivered by ProbeAsync
type Result struct {
	Image Image
	Err   error
}

// Probe reads ref, which is a file path or a base64 data URL, and decodes it
func Probe(ref string) (Image, error) {
	r, err := open(ref)
	if err != nil {
		return Image{}, err
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	img, format, err := image.Decode(r)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s: %v", ErrNotImage, displayRef(ref), err)
	}

	b := img.Bounds()
	return Image{
		Ref:    ref,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		Tint:   averageHex(img),
	}, nil
}

// ProbeAsync probes ref on its own goroutine. The channel receives exactly one
// result unless ctx is cancelled first.
func ProbeAsync(ctx context.Context, ref string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		img, err := Probe(ref)
		select {
		case out <- Result{Image: img, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// IsDataURL reports whether ref is an inline data URL
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

func open(ref string) (io.Reader, error) {
	if !IsDataURL(ref) {
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		return f, nil
	}

	// data:image/png;base64,....
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URL", ErrNotImage)
	}
	if !strings.HasPrefix(meta, "image/") {
		return nil, fmt.Errorf("%w: media type %q", ErrNotImage, strings.Split(meta, ";")[0])
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64", ErrNotImage)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding data URL: %v", ErrNotImage, err)
	}
	return bytes.NewReader(data), nil
}

// EncodeDataURL builds a data URL for raw image bytes
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// averageHex samples the image on a coarse grid
func averageHex(img image.Image) string {
	b := img.Bounds()
	if b.Empty() {
		return "#808080"
	}
	step := max(1, max(b.Dx(), b.Dy())/32)

	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			bl += uint64(cb >> 8)
			n++
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", r/n, g/n, bl/n)
}

func displayRef(ref string) string {
	if IsDataURL(ref) {
		if i := strings.IndexByte(ref, ','); i > 0 {
			return ref[:i]
		}
	}
	return ref
}
