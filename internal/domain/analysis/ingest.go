package analysis

import (
	"bytes"

	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

var (
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47}
)

var acceptedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// Normalizer decodes an upload and re-encodes it into the canonical
// form. Any decode or encode failure means the payload is not a usable
// image, regardless of what the signature check said.
type Normalizer interface {
	Normalize(data []byte) (NormalizedImage, error)
}

// ingest validates the upload before any decode work is spent on it:
// declared size, declared MIME type, then the binary signature. The
// declared values are client-controlled and easily spoofed, so the
// signature is what actually admits the buffer to the decoder.
func (s *service) ingest(upload Upload) (NormalizedImage, error) {
	if upload.DeclaredSize > s.cfg.MaxUploadBytes || int64(len(upload.Data)) > s.cfg.MaxUploadBytes {
		return NormalizedImage{}, apperrors.Wrap("file_too_large", "image exceeds the upload size limit", nil)
	}
	if _, ok := acceptedMIMETypes[upload.DeclaredMIME]; !ok {
		return NormalizedImage{}, apperrors.Wrap("unsupported_media_type", "only JPEG and PNG uploads are accepted", nil)
	}
	if !hasImageSignature(upload.Data) {
		return NormalizedImage{}, apperrors.Wrap("invalid_image", "payload does not begin with a JPEG or PNG signature", nil)
	}

	img, err := s.normalizer.Normalize(upload.Data)
	if err != nil {
		return NormalizedImage{}, apperrors.Wrap("invalid_image", "image failed to decode", err)
	}
	return img, nil
}

func hasImageSignature(data []byte) bool {
	if bytes.HasPrefix(data, jpegSignature) {
		return true
	}
	return bytes.HasPrefix(data, pngSignature)
}
