package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 80

// Slugify turns a title into a lower-case, hyphen-separated ASCII slug.
// Accents are stripped ("Pesquisa de Satisfação" -> "pesquisa-de-satisfacao").
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}
	plain = strings.NewReplacer("đ", "d", "Đ", "d", "ß", "ss", "ø", "o", "Ø", "o").Replace(plain)

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimSuffix(slug[:maxSlugLen], "-")
	}
	return slug
}

// SlugSuffix returns a short random suffix used to break slug collisions.
func SlugSuffix() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
