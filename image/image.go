// Package image implements [chatgate.Normalizer]. It decodes raw image
// bytes of any supported format, bounds their dimensions, and re-encodes
// them as baseline JPEG so every image in a conversation has one canonical
// representation.
//
// Decoders for GIF, JPEG and PNG come from the standard library; BMP, TIFF
// and WebP are registered from golang.org/x/image.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/chatgate"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// CanonicalMimeType is the MIME type of every normalized image.
const CanonicalMimeType = "image/jpeg"

// DefaultMaxPixels bounds the decoded size of an image.
const DefaultMaxPixels = 50_000_000

// Interface compliance check.
var _ chatgate.Normalizer = (*Normalizer)(nil)

// Normalizer converts raw images to canonical JPEG parts.
type Normalizer struct {
	uploader     chatgate.Uploader
	maxDimension int
	maxPixels    int
	quality      int
	allowed      []string
}

// Option configures a [Normalizer].
type Option func(*Normalizer)

// WithUploader switches the normalizer to upload mode: canonical bytes are
// handed to u and the returned URI is used as the part content. Without an
// uploader, parts carry the bytes inline.
func WithUploader(u chatgate.Uploader) Option {
	return func(n *Normalizer) { n.uploader = u }
}

// WithMaxDimension bounds the longest side of the output image. Larger
// images are downscaled preserving aspect ratio. 0 disables resizing.
func WithMaxDimension(px int) Option {
	return func(n *Normalizer) { n.maxDimension = px }
}

// WithMaxPixels bounds width*height of accepted input images.
func WithMaxPixels(px int) Option {
	return func(n *Normalizer) { n.maxPixels = px }
}

// WithQuality sets the JPEG quality in [1, 100].
func WithQuality(q int) Option {
	return func(n *Normalizer) { n.quality = q }
}

// WithAllowedTypes restricts accepted MIME types to those matching one of
// the glob patterns (e.g. "image/*", "image/{png,jpeg}"). An empty list
// accepts any type that decodes.
func WithAllowedTypes(patterns ...string) Option {
	return func(n *Normalizer) { n.allowed = patterns }
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxDimension: chatgate.DefaultMaxDimension,
		maxPixels:    DefaultMaxPixels,
		quality:      chatgate.DefaultJPEGQuality,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize decodes img, re-encodes it as JPEG, and returns it as an inline
// or uploaded ImagePart.
func (n *Normalizer) Normalize(ctx context.Context, img chatgate.Image) (chatgate.ImagePart, error) {
	if len(img.Data) == 0 {
		return chatgate.ImagePart{}, fmt.Errorf("image is empty: %w", chatgate.ErrInvalidInput)
	}

	// Undeclared payloads skip the type check; decoding decides.
	if declared := DeclaredType(img.MimeType); declared != "" && !n.accepts(declared) {
		return chatgate.ImagePart{}, fmt.Errorf("image type %q is not accepted: %w", declared, chatgate.ErrInvalidInput)
	}

	decoded, err := n.decode(img.Data)
	if err != nil {
		return chatgate.ImagePart{}, err
	}

	data, err := n.encode(decoded)
	if err != nil {
		return chatgate.ImagePart{}, err
	}

	if n.uploader == nil {
		return chatgate.ImagePart{Data: data, MimeType: CanonicalMimeType}, nil
	}
	uri, err := n.uploader.Upload(ctx, data, CanonicalMimeType)
	if err != nil {
		return chatgate.ImagePart{}, fmt.Errorf("%w: %w", chatgate.ErrUpload, err)
	}
	return chatgate.ImagePart{URI: uri, MimeType: CanonicalMimeType}, nil
}

// DeclaredType normalizes a declared MIME type, stripping parameters. It
// returns "" for missing or generic declarations such as
// application/octet-stream.
func DeclaredType(mimeType string) string {
	t := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if t == "application/octet-stream" {
		return ""
	}
	return t
}

func (n *Normalizer) accepts(mimeType string) bool {
	if len(n.allowed) == 0 {
		return true
	}
	for _, pattern := range n.allowed {
		if ok, err := doublestar.Match(pattern, mimeType); err == nil && ok {
			return true
		}
	}
	return false
}

func (n *Normalizer) decode(data []byte) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read image header: %v: %w", err, chatgate.ErrImageDecode)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%s image has no pixels: %w", format, chatgate.ErrImageDecode)
	}
	if n.maxPixels > 0 && cfg.Width*cfg.Height > n.maxPixels {
		return nil, fmt.Errorf("%s image is %dx%d, exceeds %d pixels: %w",
			format, cfg.Width, cfg.Height, n.maxPixels, chatgate.ErrImageDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", format, err, chatgate.ErrImageDecode)
	}
	return img, nil
}

func (n *Normalizer) encode(src image.Image) ([]byte, error) {
	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), n.maxDimension)

	// JPEG has no alpha channel, so composite onto white first.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == src.Bounds().Dx() && h == src.Bounds().Dy() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %v: %w", err, chatgate.ErrImageEncode)
	}
	return buf.Bytes(), nil
}

// fit returns w and h scaled so that neither exceeds limit, preserving the
// aspect ratio. A non-positive limit leaves the size unchanged.
func fit(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
