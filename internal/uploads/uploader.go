// internal/uploads/uploader.go
//
// Image derivative pipeline.
//
// Context
// -------
// Every uploaded image becomes a fixed family of resized derivatives (see
// derivatives.go).  An Uploader instance lives for one logical operation,
// e.g. one article insert that writes a cover plus N content images, and
// tracks every path it wrote.  Callers pair it with the owning DB
// transaction:
//
//	up := uploads.New(cfg.Uploads.Dir)
//	defer up.Rollback()
//	...
//	tx.Commit()
//	up.Commit()
//
// If the operation never reaches its commit point, the deferred Rollback
// deletes every derivative written during the request.  Filesystem writes
// are trivially revocable this way, so only the DB transaction needs real
// atomicity.
//
// Failure semantics per Handle call
// ---------------------------------
// Writes happen in a fixed order: mobile raster, mobile WebP, desktop
// raster, desktop WebP.  The moment one write fails, every derivative
// already written by that call is removed and the error is returned; a
// partial derivative set never outlives a single Handle invocation.
//
// Notes
// -----
// • Output format follows alpha-channel presence: PNG with alpha, JPEG
//   otherwise.  WebP derivatives are always WebP.
// • An Uploader is not safe for concurrent use; one request owns one
//   instance.
// • Oxford commas, two spaces after periods.
package uploads

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/atelier-cms/atelier/internal/metrics"
)

// Bounds is a maximum bounding box; derivatives are fitted inside it with
// the aspect ratio preserved.
type Bounds struct {
	W, H int
}

// Default bounding boxes for the two tiers.
var (
	DefaultMobile  = Bounds{W: 500, H: 500}
	DefaultDesktop = Bounds{W: 700, H: 700}
)

// Uploader tracks the derivative files written during one logical
// operation.
type Uploader struct {
	dir     string
	tracked []string
}

// New returns an Uploader rooted at dir.  The dir and its mobile
// sub-directory must already exist (cmd/web creates them at boot).
func New(dir string) *Uploader {
	return &Uploader{dir: dir}
}

// Handle writes the derivative family for img under baseName and returns
// the stored file name ("<baseName>.png" or "<baseName>.jpg").  A nil
// bounds skips that tier entirely; withWebP adds the WebP siblings of each
// written tier.  baseName collision avoidance is the caller's job.
func (u *Uploader) Handle(img image.Image, baseName string, mobile, desktop *Bounds, withWebP bool) (string, error) {
	ext := "jpg"
	if hasAlpha(img) {
		ext = "png"
	}
	stored := baseName + "." + ext

	var written []string
	fail := func(err error) (string, error) {
		RemoveFiles(written)
		return "", err
	}

	if mobile != nil {
		p := filepath.Join(u.dir, MobileDir, stored)
		if err := writeRaster(img, *mobile, p); err != nil {
			return fail(err)
		}
		written = append(written, p)

		if withWebP {
			p = filepath.Join(u.dir, MobileDir, baseName+".webp")
			if err := writeWebP(img, *mobile, p); err != nil {
				return fail(err)
			}
			written = append(written, p)
		}
	}

	if desktop != nil {
		p := filepath.Join(u.dir, stored)
		if err := writeRaster(img, *desktop, p); err != nil {
			return fail(err)
		}
		written = append(written, p)

		if withWebP {
			p = filepath.Join(u.dir, baseName+".webp")
			if err := writeWebP(img, *desktop, p); err != nil {
				return fail(err)
			}
			written = append(written, p)
		}
	}

	u.tracked = append(u.tracked, written...)
	metrics.UploadsTotal.Inc()
	return stored, nil
}

// Written returns the paths tracked so far.  Mostly useful in tests.
func (u *Uploader) Written() []string {
	out := make([]string, len(u.tracked))
	copy(out, u.tracked)
	return out
}

// Commit marks every tracked file permanent.  Call it strictly after the
// owning DB transaction committed.
func (u *Uploader) Commit() {
	u.tracked = nil
}

// Rollback deletes every tracked file.  Safe to defer unconditionally; it
// is a no-op after Commit.
func (u *Uploader) Rollback() {
	if len(u.tracked) == 0 {
		return
	}
	RemoveFiles(u.tracked)
	u.tracked = nil
	metrics.UploadRollbacksTotal.Inc()
}

func writeRaster(img image.Image, b Bounds, path string) error {
	thumb := imaging.Fit(img, b.W, b.H, imaging.CatmullRom)
	if err := imaging.Save(thumb, path); err != nil {
		return fmt.Errorf("uploads: save %s: %w", path, err)
	}
	return nil
}

func writeWebP(img image.Image, b Bounds, path string) error {
	thumb := imaging.Fit(img, b.W, b.H, imaging.CatmullRom)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("uploads: create %s: %w", path, err)
	}
	if err := webp.Encode(f, thumb, &webp.Options{Quality: 100}); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("uploads: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("uploads: close %s: %w", path, err)
	}
	return nil
}

// hasAlpha reports whether img carries a non-opaque alpha channel.  Opaque
// images are written as JPEG, everything else as PNG.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}
