// internal/api/images.go
//
// Multipart image extraction for content endpoints.
//
// Context
// -------
// Mutating content endpoints take multipart/form-data: a `payload` part
// holding the JSON body, plus zero or more file parts.  Wire-format checks
// happen here, before any decode work: part size is capped at 2 MB, and
// only PNG and JPEG are accepted.  The decoded image.Image values go to
// the services; the services never see multipart.
package api

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"

	"github.com/atelier-cms/atelier/internal/content"
)

// maxImageBytes caps a single uploaded image part.
const maxImageBytes = 2 << 20

// maxFormMemory bounds in-memory multipart buffering; bigger parts spill
// to temp files.
const maxFormMemory = 16 << 20

// formImage decodes the single file under key, or returns (nil, nil) when
// the part is absent.
func formImage(r *http.Request, key string) (image.Image, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[key]) == 0 {
		return nil, nil
	}
	return decodePart(r.MultipartForm.File[key][0], key)
}

// formImages decodes every file under key, preserving order.
func formImages(r *http.Request, key string) ([]image.Image, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[key]
	imgs := make([]image.Image, 0, len(headers))
	for _, h := range headers {
		img, err := decodePart(h, key)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

func decodePart(h *multipart.FileHeader, key string) (image.Image, error) {
	if h.Size > maxImageBytes {
		return nil, content.Invalid(key, "larger than 2MB")
	}
	switch h.Header.Get("Content-Type") {
	case "image/png", "image/jpeg":
	default:
		return nil, content.Invalid(key, "not a png or jpeg")
	}

	f, err := h.Open()
	if err != nil {
		return nil, content.Invalid(key, "unreadable")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, content.Invalid(key, "not a decodable image")
	}
	return img, nil
}
