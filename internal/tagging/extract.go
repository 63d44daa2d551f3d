// Package tagging извлекает хэштеги и упоминания из текста поста в момент записи.
package tagging

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	hashtagRe = regexp.MustCompile(`#\w+`)
	mentionRe = regexp.MustCompile(`@\w+`)
)

// Result - результат разбора текста. Слайсы никогда не nil.
type Result struct {
	// Hashtags - теги в нижнем регистре без '#', в порядке появления, с повторами.
	Hashtags []string
	// Mentions - имена пользователей без '@', регистр сохраняется.
	Mentions []string
}

// Extract разбирает текст. Функция чистая: ни сети, ни хранилища.
func Extract(content string) Result {
	res := Result{Hashtags: []string{}, Mentions: []string{}}
	for _, m := range hashtagRe.FindAllString(content, -1) {
		res.Hashtags = append(res.Hashtags, strings.ToLower(m[1:]))
	}
	for _, m := range mentionRe.FindAllString(content, -1) {
		res.Mentions = append(res.Mentions, m[1:])
	}
	return res
}

// Normalize приводит текст к NFC, чтобы одинаковые на вид строки совпадали при поиске.
func Normalize(content string) string {
	return norm.NFC.String(content)
}

// UniqueMentions убирает повторы, сохраняя порядок первого появления.
func UniqueMentions(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
