// internal/content/refs.go
//
// Inline image placeholders.
//
// Article and project bodies embed uploaded images as `[[id]]` placeholders.
// During an insert the handler uploads picture i and rewrites `[[i]]` (the
// client-side index) to `[[id]]` (the database row id).  During an update the
// placeholders still present in the new body decide which previously
// registered images survive; the rest are orphans.
package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var refPattern = regexp.MustCompile(`\[\[(\d+)\]\]`)

// ImageRefs returns the set of image ids referenced by body.
func ImageRefs(body string) map[int64]bool {
	refs := make(map[int64]bool)
	for _, m := range refPattern.FindAllStringSubmatch(body, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue // digits too long for int64, cannot match a row id
		}
		refs[id] = true
	}
	return refs
}

// RewriteRef replaces the first `[[index]]` placeholder in body with the
// registered image id.
func RewriteRef(body string, index int, id int64) string {
	return strings.Replace(body,
		fmt.Sprintf("[[%d]]", index),
		fmt.Sprintf("[[%d]]", id), 1)
}
