// internal/uploads/derivatives.go
//
// Derivative path layout.
//
// A stored file record keeps only the canonical name, e.g. "cover_17.jpg".
// The bytes on disk are a family of derivatives sharing that base name:
//
//	<dir>/cover_17.jpg          desktop raster
//	<dir>/mobile/cover_17.jpg   mobile raster
//	<dir>/cover_17.webp         desktop WebP
//	<dir>/mobile/cover_17.webp  mobile WebP
//
// Every routine that deletes a logical file goes through DerivativePaths so
// the layout is defined in exactly one place.
package uploads

import (
	"os"
	"path/filepath"
	"strings"
)

// MobileDir is the sub-directory holding the mobile-sized derivatives.
const MobileDir = "mobile"

// DerivativePaths expands a stored file name into the four on-disk
// derivative paths under dir.
func DerivativePaths(dir, stored string) []string {
	base := strings.TrimSuffix(stored, filepath.Ext(stored))
	return []string{
		filepath.Join(dir, stored),
		filepath.Join(dir, MobileDir, stored),
		filepath.Join(dir, base+".webp"),
		filepath.Join(dir, MobileDir, base+".webp"),
	}
}

// RemoveFiles deletes every path, ignoring missing files.  Removal is
// idempotent by contract; orphaned bytes are the safe failure direction, a
// dangling database reference is not.
func RemoveFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
