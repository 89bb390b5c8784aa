package simplepublish

import "strings"

// Slugify derives the normalized URL identifier from a title: lower-cased,
// stripped to [a-z0-9] and whitespace, whitespace runs collapsed to single
// hyphens. Deterministic, with no collision suffixing; uniqueness is the
// caller's problem (see Service create/update, which fail with
// ErrSlugConflict on collision).
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
