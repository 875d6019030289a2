package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeMarkup converts the lightweight emphasis produced by language
// models into the inline tags understood by ParseInline: **x** becomes
// <b>x</b>, *x* and _x_ become <i>x</i>. Unmatched markers are kept as
// literal text and underscores inside words are left alone.
func NormalizeMarkup(s string) string {
	s = replacePairs(s, "**", "<b>", "</b>", false)
	s = replacePairs(s, "*", "<i>", "</i>", false)
	return replacePairs(s, "_", "<i>", "</i>", true)
}

func replacePairs(s, marker, open, close string, wordBoundary bool) string {
	if !strings.Contains(s, marker) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], marker) && !(wordBoundary && wordBefore(s, i)) {
			rest := s[i+len(marker):]
			if k := strings.Index(rest, marker); k > 0 {
				inner := rest[:k]
				after := rest[k+len(marker):]
				if validInner(inner) && !(wordBoundary && wordAfter(after)) {
					b.WriteString(open)
					b.WriteString(inner)
					b.WriteString(close)
					i += len(marker) + k + len(marker)
					continue
				}
			}
			b.WriteString(marker)
			i += len(marker)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func validInner(inner string) bool {
	if strings.ContainsAny(inner, "\r\n") {
		return false
	}
	first, _ := utf8.DecodeRuneInString(inner)
	last, _ := utf8.DecodeLastRuneInString(inner)
	return !unicode.IsSpace(first) && !unicode.IsSpace(last)
}

func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordAfter(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Span is a run of text sharing one inline style.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Break  bool
}

// ParseInline splits text carrying <b>, <i> and <br/> tags into styled spans.
// Any other angle-bracket sequence is kept as literal text.
func ParseInline(s string) []Span {
	var (
		spans        []Span
		buf          strings.Builder
		bold, italic int
	)
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		spans = append(spans, Span{Text: buf.String(), Bold: bold > 0, Italic: italic > 0})
		buf.Reset()
	}
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if tag, n := matchTag(s[i:]); n > 0 {
				flush()
				switch tag {
				case "b":
					bold++
				case "/b":
					if bold > 0 {
						bold--
					}
				case "i":
					italic++
				case "/i":
					if italic > 0 {
						italic--
					}
				case "br":
					spans = append(spans, Span{Break: true})
				}
				i += n
				continue
			}
		}
		buf.WriteByte(s[i])
		i++
	}
	flush()
	return spans
}

// PlainText strips inline tags, turning breaks into newlines.
func PlainText(s string) string {
	var b strings.Builder
	for _, sp := range ParseInline(s) {
		if sp.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(sp.Text)
	}
	return b.String()
}

func matchTag(s string) (string, int) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", 0
	}
	name := strings.ToLower(s[1:end])
	switch name {
	case "b", "/b", "i", "/i":
		return name, end + 1
	case "br", "br/", "br /":
		return "br", end + 1
	}
	return "", 0
}
