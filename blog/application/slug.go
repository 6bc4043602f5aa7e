package application

import "strings"

// Slugify derives a URL-safe identifier from a title: lower-cased, with every
// run of characters outside [a-z0-9] collapsed into a single hyphen and no
// hyphen at either end. Deterministic and pure; an all-symbol title yields ""
// and callers must reject the write rather than store an empty slug.
// Uniqueness is the repository's concern, not ours.
func Slugify(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))

	pendingHyphen := false
	for _, r := range lower {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}
