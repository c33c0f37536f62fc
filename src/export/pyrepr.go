package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatList renders items the way Python's repr renders a list of str,
// e.g. ['a', "it's"]. Dataset consumers parse the list columns with
// ast.literal_eval, so the quoting rules must match.
func FormatList(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRepr(&b, s)
	}
	b.WriteByte(']')
	return b.String()
}

func writeRepr(b *strings.Builder, s string) {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r <= 0xff && !unicode.IsPrint(r):
			fmt.Fprintf(b, `\x%02x`, r)
		case !unicode.IsPrint(r) && r <= 0xffff:
			fmt.Fprintf(b, `\u%04x`, r)
		case !unicode.IsPrint(r):
			fmt.Fprintf(b, `\U%08x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
}

// ParseList is the inverse of FormatList. It accepts either quote style
// and the escapes Python's repr produces.
func ParseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("not a list literal: %q", s)
	}
	body := s[1 : len(s)-1]
	items := []string{}
	i := skipSpace(body, 0)
	for i < len(body) {
		item, next, err := parseString(body, i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		i = skipSpace(body, next)
		if i == len(body) {
			break
		}
		if body[i] != ',' {
			return nil, fmt.Errorf("expected ',' at offset %d in %q", i+1, s)
		}
		i = skipSpace(body, i+1)
	}
	return items, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
		i++
	}
	return i
}

// parseString reads one quoted literal starting at s[i] and returns it
// together with the offset just past the closing quote.
func parseString(s string, i int) (string, int, error) {
	quote := s[i]
	if quote != '\'' && quote != '"' {
		return "", 0, fmt.Errorf("expected quoted string at offset %d", i)
	}
	var b strings.Builder
	for j := i + 1; j < len(s); {
		c := s[j]
		switch {
		case c == quote:
			return b.String(), j + 1, nil
		case c != '\\':
			r, size := utf8.DecodeRuneInString(s[j:])
			b.WriteRune(r)
			j += size
		case j+1 >= len(s):
			return "", 0, fmt.Errorf("dangling escape at offset %d", j)
		default:
			n, err := unescape(&b, s, j+1)
			if err != nil {
				return "", 0, err
			}
			j = n
		}
	}
	return "", 0, fmt.Errorf("unterminated string starting at offset %d", i)
}

// unescape decodes the escape whose letter is at s[j] and returns the
// offset after it.
func unescape(b *strings.Builder, s string, j int) (int, error) {
	width := 0
	switch s[j] {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case '\\', '\'', '"':
		b.WriteByte(s[j])
	case 'x':
		width = 2
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, fmt.Errorf("unknown escape \\%c", s[j])
	}
	if width == 0 {
		return j + 1, nil
	}
	if j+1+width > len(s) {
		return 0, fmt.Errorf("short \\%c escape", s[j])
	}
	code, err := strconv.ParseUint(s[j+1:j+1+width], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad \\%c escape: %w", s[j], err)
	}
	b.WriteRune(rune(code))
	return j + 1 + width, nil
}
