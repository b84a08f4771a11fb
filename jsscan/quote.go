package jsscan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Unquote decodes the body of a string literal (without its quotes),
// resolving JavaScript escape sequences and line continuations.
func Unquote(body string) (string, error) {
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("trailing backslash")
		}
		c = body[i]
		switch c {
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0':
			if i+1 < len(body) && isDigit(body[i+1]) {
				return "", fmt.Errorf("octal escape sequences are not supported")
			}
			b.WriteByte(0)
			i++
		case '\n':
			i++
		case '\r':
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			if i+3 > len(body) {
				return "", fmt.Errorf("short \\x escape")
			}
			n, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape %q", body[i-1:i+3])
			}
			b.WriteRune(rune(n))
			i += 3
		case 'u':
			r, next, err := unicodeEscape(body, i+1)
			if err != nil {
				return "", err
			}
			i = next
			if utf16.IsSurrogate(r) && next+1 < len(body) && body[next] == '\\' && body[next+1] == 'u' {
				if r2, next2, err := unicodeEscape(body, next+2); err == nil {
					if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
						r, i = dec, next2
					}
				}
			}
			b.WriteRune(r)
		default:
			r, size := utf8.DecodeRuneInString(body[i:])
			if r != '\u2028' && r != '\u2029' {
				b.WriteString(body[i : i+size])
			}
			i += size
		}
	}
	return b.String(), nil
}

// unicodeEscape parses the digits of \uXXXX or \u{X...} starting at i.
func unicodeEscape(body string, i int) (rune, int, error) {
	if i < len(body) && body[i] == '{' {
		end := strings.IndexByte(body[i:], '}')
		if end < 0 {
			return 0, i, fmt.Errorf("unterminated \\u{ escape")
		}
		n, err := strconv.ParseUint(body[i+1:i+end], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, i, fmt.Errorf("bad \\u{} escape")
		}
		return rune(n), i + end + 1, nil
	}
	if i+4 > len(body) {
		return 0, i, fmt.Errorf("short \\u escape")
	}
	n, err := strconv.ParseUint(body[i:i+4], 16, 16)
	if err != nil {
		return 0, i, fmt.Errorf("bad \\u escape %q", body[i:i+4])
	}
	return rune(n), i + 4, nil
}

// Quote renders s as a string literal delimited by q. Non-ASCII text is
// written literally; only the delimiter, backslashes, control characters
// and the two JavaScript line separators are escaped.
func Quote(s string, q byte) string {
	if q != '\'' && q != '"' {
		q = '"'
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for _, r := range s {
		switch r {
		case rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
