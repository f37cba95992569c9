// Package normalize turns free-form parameter labels into ASCII identifiers
// that are safe to use as XML element names.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// trailingPunct is stripped from the end of a label before transliteration.
const trailingPunct = ";.,!?"

// cyrillic maps every Russian Cyrillic letter to its Latin spelling.
// Hard and soft signs map to "" and are dropped.
var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",

	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "Yo",
	'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M",
	'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U",
	'Ф': "F", 'Х': "H", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sch",
	'Ъ': "", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
}

var separators = strings.NewReplacer(" ", "_", "-", "_")

var tagPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Normalize converts a raw label into a lowercase, underscore-delimited tag.
// Example: "Дата рождения." → "data_rozhdeniya"
//
// The result is empty when the label holds nothing but punctuation and
// whitespace. Normalize is idempotent on its own output.
func Normalize(label string) string {
	s := strings.TrimRight(label, trailingPunct)
	s = strings.TrimSpace(s)

	s = Transliterate(s)
	s = strings.ToLower(s)
	s = separators.Replace(s)

	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}

	return strings.Trim(s, "_")
}

// Transliterate rewrites Cyrillic letters with their Latin spelling.
// Letters, digits, '_', '-' and ' ' outside the table are kept as is;
// any other rune becomes '_'.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if latin, ok := cyrillic[r]; ok {
			b.WriteString(latin)
			continue
		}
		if isPassthrough(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}

	return b.String()
}

func isPassthrough(r rune) bool {
	switch r {
	case '_', '-', ' ':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// IsValidTag reports whether s matches [A-Za-z_][A-Za-z0-9_-]*.
func IsValidTag(s string) bool {
	return tagPattern.MatchString(s)
}
