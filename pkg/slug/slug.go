package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// cyrillicToLatin maps Cyrillic characters to Latin transliteration
var cyrillicToLatin = map[rune]string{
	'а': "a", 'А': "a",
	'б': "b", 'Б': "b",
	'в': "v", 'В': "v",
	'г': "g", 'Г': "g",
	'д': "d", 'Д': "d",
	'е': "e", 'Е': "e",
	'ё': "e", 'Ё': "e",
	'ж': "zh", 'Ж': "zh",
	'з': "z", 'З': "z",
	'и': "i", 'И': "i",
	'й': "y", 'Й': "y",
	'к': "k", 'К': "k",
	'л': "l", 'Л': "l",
	'м': "m", 'М': "m",
	'н': "n", 'Н': "n",
	'о': "o", 'О': "o",
	'п': "p", 'П': "p",
	'р': "r", 'Р': "r",
	'с': "s", 'С': "s",
	'т': "t", 'Т': "t",
	'у': "u", 'У': "u",
	'ф': "f", 'Ф': "f",
	'х': "h", 'Х': "h",
	'ц': "c", 'Ц': "c",
	'ч': "ch", 'Ч': "ch",
	'ш': "sh", 'Ш': "sh",
	'щ': "sh", 'Щ': "sh",
	'ъ': "", 'Ъ': "",
	'ы': "y", 'Ы': "y",
	'ь': "", 'Ь': "",
	'э': "e", 'Э': "e",
	'ю': "iu", 'Ю': "iu",
	'я': "ia", 'Я': "ia",
}

const maxSlugLen = 60

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Topic builds a URL and object-key friendly slug from a free text topic.
// Cyrillic is transliterated, everything else outside [a-z0-9] becomes a dash.
// Example: "Анализ данных & SQL" -> "analiz-dannyh-sql"
func Topic(topic string) string {
	var result strings.Builder
	for _, char := range strings.ToLower(topic) {
		if latin, exists := cyrillicToLatin[char]; exists {
			result.WriteString(latin)
		} else {
			result.WriteRune(char)
		}
	}

	slug := nonSlugChars.ReplaceAllString(result.String(), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "topic"
	}
	return slug
}

// WithID appends an id to a slug: "{slug}-{id}"
func WithID(slug, id string) string {
	return fmt.Sprintf("%s-%s", slug, id)
}
