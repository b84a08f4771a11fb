package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/minios-linux/i18nsync/jsscan"
)

// scanScript tokenizes script text and records calls of the given names
// whose first argument is a string literal. base and line locate src inside
// the enclosing file. jsx enables JSX element syntax.
func scanScript(src []byte, base, line int, names []string, jsx bool) ([]located, error) {
	tokenize := jsscan.Tokenize
	if jsx {
		tokenize = jsscan.TokenizeJSX
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var found []located
	for i, tok := range toks {
		if tok.Kind != jsscan.Ident || !want[tok.Value] {
			continue
		}
		if i > 0 && toks[i-1].Is("new") {
			continue
		}
		if !tokenIs(toks, i+1, "(") || i+2 >= len(toks) || toks[i+2].Kind != jsscan.String {
			continue
		}
		if !tokenIs(toks, i+3, ",") && !tokenIs(toks, i+3, ")") {
			continue
		}
		arg := toks[i+2]
		found = append(found, located{key: arg.Value, offset: base + arg.Start, line: line + arg.Line - 1})
	}
	return found, nil
}

func tokenIs(toks []jsscan.Token, i int, text string) bool {
	return i < len(toks) && toks[i].Is(text)
}

// quotedArg matches a single or double quoted string literal.
const quotedArg = `'(?:[^'\\\n]|\\.)*'|"(?:[^"\\\n]|\\.)*"`

// markupCallRe builds the expression used on template markup. The name must
// not be preceded by an identifier character; the character after the
// literal is checked separately so adjacent calls are not swallowed.
func markupCallRe(names []string) *regexp.Regexp {
	alts := make([]string, len(names))
	for i, n := range names {
		alts[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?:^|[^\w$])(?:` + strings.Join(alts, "|") + `)\(\s*(` + quotedArg + `)\s*`)
}

// scanMarkup finds calls in the template text src[start:end].
func scanMarkup(src []byte, start, end int, names []string) ([]located, error) {
	re := markupCallRe(names)
	text := src[start:end]
	var found []located
	for _, m := range re.FindAllSubmatchIndex(text, -1) {
		next := m[1]
		if next >= len(text) || (text[next] != ',' && text[next] != ')') {
			continue
		}
		lit := text[m[2]:m[3]]
		key, err := jsscan.Unquote(string(lit[1 : len(lit)-1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", lineAt(src, start+m[2]), err)
		}
		found = append(found, located{key: key, offset: start + m[2], line: lineAt(src, start+m[2])})
	}
	return found, nil
}

// scanLookups finds index lookups on obj with a quoted key: obj['k'],
// obj["k"] or obj[`k`].
func scanLookups(src []byte, obj string) ([]located, error) {
	re := regexp.MustCompile(`(?:^|[^\w$])` + regexp.QuoteMeta(obj) +
		`\[\s*(` + quotedArg + "|`(?:[^`\\\\]|\\\\.)*`" + `)\s*\]`)
	var found []located
	for _, m := range re.FindAllSubmatchIndex(src, -1) {
		lit := src[m[2]:m[3]]
		body := string(lit[1 : len(lit)-1])
		key := body
		if lit[0] != '`' {
			var err error
			if key, err = jsscan.Unquote(body); err != nil {
				return nil, fmt.Errorf("line %d: %v", lineAt(src, m[2]), err)
			}
		}
		found = append(found, located{key: key, offset: m[2], line: lineAt(src, m[2])})
	}
	return found, nil
}

func lineAt(src []byte, offset int) int {
	return bytes.Count(src[:offset], []byte{'\n'}) + 1
}
