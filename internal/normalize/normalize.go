// Package normalize produces canonical identifiers accepted by the face
// recognition service. Both variants are deterministic and idempotent, so a
// normalized id can be re-normalized safely when it round-trips through the
// remote collection.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/eventfoto/face-indexer/internal/constants"
)

// CollectionID normalizes an event name into a recognition collection id.
// Allowed characters are [a-zA-Z0-9_.-]; everything else becomes '_'.
func CollectionID(name string) string {
	return canonicalize(name, false, constants.MaxCollectionIDLength)
}

// ExternalImageID normalizes a photo key into a per-photo external image id.
// Same charset as CollectionID plus ':', which lets day prefixes like
// "12-03:IMG_0042.jpg" survive normalization.
func ExternalImageID(name string) string {
	return canonicalize(name, true, constants.MaxExternalImageIDLength)
}

// RemoveDiacritics folds accented characters to their ASCII base letter
// (NFD decomposition with combining marks stripped).
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func canonicalize(name string, allowColon bool, maxLen int) string {
	s := RemoveDiacritics(name)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if allowed(r, allowColon) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s = collapseFiller(b.String())
	s = strings.Trim(s, "_")

	if len(s) > maxLen {
		s = s[:maxLen]
		// truncation may expose a trailing filler; trim again so the
		// result stays a fixed point of this function
		s = strings.TrimRight(s, "_")
	}
	return s
}

func allowed(r rune, allowColon bool) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	case r == ':' && allowColon:
		return true
	}
	return false
}

// collapseFiller reduces runs of consecutive underscores to a single one.
func collapseFiller(s string) string {
	if !strings.Contains(s, "__") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := false
	for _, r := range s {
		if r == '_' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
