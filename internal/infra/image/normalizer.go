// Package image canonicalizes uploads so that the fingerprint depends only
// on pixel content: decode, cover-crop to a fixed resolution, re-encode as
// PNG. Container metadata (EXIF, ancillary chunks) never reaches the output.
package image

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	// Register decoders beyond the PNG/JPEG/GIF defaults.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/csera5/BlockchainTech/internal/domain"
)

// MediaType of every normalized artifact.
const MediaType = "image/png"

type Normalizer struct {
	width   int
	height  int
	workDir string
}

func NewNormalizer(width, height int, workDir string) *Normalizer {
	if width <= 0 {
		width = 256
	}
	if height <= 0 {
		height = 256
	}
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Normalizer{width: width, height: height, workDir: workDir}
}

// Normalize decodes r, resizes to the canonical resolution (cover fit,
// Lanczos) and writes a PNG artifact under the work directory. The caller
// owns cleanup of the returned path.
func (n *Normalizer) Normalize(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	canonical := imaging.Fill(img, n.width, n.height, imaging.Center, imaging.Lanczos)

	out, err := os.CreateTemp(n.workDir, "normalized-*.png")
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if err := imaging.Encode(out, canonical, imaging.PNG); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("encode artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return filepath.Clean(out.Name()), nil
}
