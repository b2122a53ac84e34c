// internal/image/compress.go
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Compressed is the result of resizing and re-encoding a captured frame.
type Compressed struct {
	URI    string
	Base64 string
}

// Compressor is the capture/compression boundary the day log engine talks to.
// A nil Compressed on error means "do not create an entry".
type Compressor interface {
	Compress(ctx context.Context, srcURI string) (*Compressed, error)
	Reencode(ctx context.Context, uri string) (string, error)
}

// SpoolCompressor keeps compressed frames as PNG files in a spool directory.
type SpoolCompressor struct {
	dir    string
	width  int
	height int
}

var _ Compressor = (*SpoolCompressor)(nil)

func NewSpoolCompressor(dir string, width, height int) (*SpoolCompressor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool dir: %w", err)
	}
	return &SpoolCompressor{dir: dir, width: width, height: height}, nil
}

// Capture writes a raw captured frame into the spool and returns its URI.
// This stands in for the camera: callers hand us the frame bytes.
func (c *SpoolCompressor) Capture(data []byte) (string, error) {
	uri := filepath.Join(c.dir, "capture-"+uuid.New().String()+".png")
	if err := os.WriteFile(uri, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write captured frame: %w", err)
	}
	return uri, nil
}

// Compress decodes the frame at srcURI, scales it to the bounded resolution,
// re-encodes as PNG and spools the result.
func (c *SpoolCompressor) Compress(ctx context.Context, srcURI string) (*Compressed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := decodeFile(srcURI)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", srcURI, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", srcURI, err)
	}

	uri := filepath.Join(c.dir, uuid.New().String()+".png")
	if err := os.WriteFile(uri, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to spool %q: %w", srcURI, err)
	}

	return &Compressed{
		URI:    uri,
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Reencode reads an already-spooled frame and returns it as base64 PNG.
// Used before each vision request so the wire format is always PNG.
func (c *SpoolCompressor) Reencode(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := decodeFile(uri)
	if err != nil {
		return "", fmt.Errorf("failed to decode %q: %w", uri, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode %q: %w", uri, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodeFile(uri string) (image.Image, error) {
	f, err := os.Open(uri)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
