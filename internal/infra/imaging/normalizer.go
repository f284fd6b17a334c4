package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/dermalens/skin-advisor/internal/domain/analysis"
)

// imageHashLen is the number of hex characters kept from the digest of
// the original upload; enough to spot duplicates without retaining the
// photo itself.
const imageHashLen = 16

// Normalizer re-encodes uploads into the canonical analysis form:
// upright, bounded dimensions, JPEG at a fixed quality. The re-encode
// path never writes EXIF/XMP/IPTC/ICC blocks, so the output carries no
// metadata by construction rather than by stripping.
type Normalizer struct {
	maxDimension int
	jpegQuality  int
}

// NewNormalizer constructs the canonical image normalizer.
func NewNormalizer(maxDimension, jpegQuality int) *Normalizer {
	return &Normalizer{maxDimension: maxDimension, jpegQuality: jpegQuality}
}

// Normalize decodes data, applies the EXIF orientation transform,
// downsizes to fit within maxDimension on both axes (never upscaling),
// and re-encodes as JPEG. Stdlib decoders interpret pixels as sRGB, so
// the JPEG output is in the canonical color space.
func (n *Normalizer) Normalize(data []byte) (analysis.NormalizedImage, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return analysis.NormalizedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() > n.maxDimension || bounds.Dy() > n.maxDimension {
		src = imaging.Fit(src, n.maxDimension, n.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.JPEG, imaging.JPEGQuality(n.jpegQuality)); err != nil {
		return analysis.NormalizedImage{}, fmt.Errorf("encode image: %w", err)
	}

	out := src.Bounds()
	digest := sha256.Sum256(data)
	return analysis.NormalizedImage{
		JPEG:   buf.Bytes(),
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  out.Dx(),
		Height: out.Dy(),
		Hash:   hex.EncodeToString(digest[:])[:imageHashLen],
	}, nil
}

var _ analysis.Normalizer = (*Normalizer)(nil)
