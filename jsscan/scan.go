// Package jsscan tokenizes JavaScript, TypeScript and JSX source text.
//
// It is not a parser. It produces a flat token stream with byte offsets that
// is precise enough to find call sites and object literals and to rewrite
// them in place. Whitespace and comments are skipped; their text stays
// reachable through the offsets of the surrounding tokens.
//
// TokenizeJSX additionally recognizes JSX elements where an expression may
// start. Element text is skipped, while attribute values and {...}
// containers are tokenized. Tokenize is lenient where JSX breaks plain
// JavaScript lexing rules (an apostrophe in element text, a slash in a
// closing tag): such spots produce Invalid tokens or punctuation instead of
// failing the whole file. Only unterminated block comments and template
// literals are reported as syntax errors.
package jsscan

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	EOF      Kind = iota
	Ident         // identifiers and keywords
	String        // '...' or "..."
	Template      // one piece of a `...` template literal
	Number        // numeric literal
	Regex         // /.../flags
	Punct         // operators and punctuation
	Invalid       // unterminated single-line string
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case String:
		return "String"
	case Template:
		return "Template"
	case Number:
		return "Number"
	case Regex:
		return "Regex"
	case Punct:
		return "Punct"
	case Invalid:
		return "Invalid"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical token.
type Token struct {
	Kind Kind
	// Start and End are byte offsets into the source, End exclusive.
	Start, End int
	// Line is the 1-based line of Start.
	Line int
	// NewlineBefore is set when a line break separates this token from the
	// previous one.
	NewlineBefore bool
	// Value is the decoded content for String tokens and the raw text for
	// every other kind.
	Value string
	// Quote is the delimiter of a String token.
	Quote byte
}

// Is reports whether the token is an identifier or punctuator with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == Ident || t.Kind == Punct) && t.Value == text
}

// SyntaxError is returned for source text the scanner cannot recover from.
type SyntaxError struct {
	Offset int
	Line   int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// regexKeywords are the keywords after which a slash starts a regular expression.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// puncts lists multi-character punctuators, longest first. A lone '>' is
// always emitted on its own so TypeScript generics like Map<K, Array<V>>
// close cleanly.
var puncts = []string{
	"...", "===", "!==", "**=", "<<=", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<",
}

type lexer struct {
	src    []byte
	jsx    bool
	pos    int
	line   int
	nl     bool
	braces int
	// tpl holds the brace depth at each open ${ substitution.
	tpl  []int
	toks []Token
}

// Tokenize scans src completely. On error the tokens scanned so far are
// returned together with a *SyntaxError.
func Tokenize(src []byte) ([]Token, error) {
	return tokenize(src, false)
}

// TokenizeJSX is Tokenize for .jsx and .tsx sources.
func TokenizeJSX(src []byte) ([]Token, error) {
	return tokenize(src, true)
}

func tokenize(src []byte, jsx bool) ([]Token, error) {
	l := &lexer{src: src, line: 1, jsx: jsx}
	l.skipPreamble()
	for {
		if err := l.skipSpace(); err != nil {
			return l.toks, err
		}
		if l.pos >= len(l.src) {
			break
		}
		if err := l.scan(); err != nil {
			return l.toks, err
		}
	}
	if len(l.tpl) > 0 {
		return l.toks, l.errorf(len(l.src), "unterminated template literal")
	}
	return l.toks, nil
}

func (l *lexer) errorf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Line: l.line, Msg: fmt.Sprintf(format, args...)}
}

// skipPreamble skips a byte order mark and a #! line.
func (l *lexer) skipPreamble() {
	if len(l.src) >= 3 && l.src[0] == 0xEF && l.src[1] == 0xBB && l.src[2] == 0xBF {
		l.pos = 3
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '#' && l.src[l.pos+1] == '!' {
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
	}
}

func (l *lexer) skipSpace() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.nl = true
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			start := l.pos
			l.pos += 2
			closed := false
			for l.pos+1 < len(l.src) {
				if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
					l.pos += 2
					closed = true
					break
				}
				if l.src[l.pos] == '\n' {
					l.line++
					l.nl = true
				}
				l.pos++
			}
			if !closed {
				l.pos = len(l.src)
				return l.errorf(start, "unterminated comment")
			}
		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRune(l.src[l.pos:])
			if r == '\u2028' || r == '\u2029' {
				l.line++
				l.nl = true
			} else if !unicode.IsSpace(r) && r != '\uFEFF' {
				return nil
			}
			l.pos += size
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) emit(kind Kind, start int, line int) *Token {
	l.toks = append(l.toks, Token{
		Kind:          kind,
		Start:         start,
		End:           l.pos,
		Line:          line,
		NewlineBefore: l.nl,
		Value:         string(l.src[start:l.pos]),
	})
	l.nl = false
	return &l.toks[len(l.toks)-1]
}

func (l *lexer) scan() error {
	c := l.src[l.pos]
	start, line := l.pos, l.line

	switch {
	case c == '\'' || c == '"':
		l.scanString(c)
		return nil
	case c == '`':
		l.pos++
		return l.scanTemplate(start, line)
	case c == '}' && len(l.tpl) > 0 && l.braces == l.tpl[len(l.tpl)-1]:
		l.tpl = l.tpl[:len(l.tpl)-1]
		l.pos++
		return l.scanTemplate(start, line)
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		l.scanNumber()
		return nil
	case c == '/' && l.regexAllowed():
		if l.scanRegex() {
			return nil
		}
	case c == '<' && l.jsx && l.jsxAllowed():
		if l.tryElement() {
			return nil
		}
	}

	r, size := utf8.DecodeRune(l.src[l.pos:])
	if isIdentStart(r) {
		l.pos += size
		for l.pos < len(l.src) {
			r, size = utf8.DecodeRune(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.pos += size
		}
		l.emit(Ident, start, line)
		return nil
	}

	l.scanPunct()
	return nil
}

func (l *lexer) scanString(q byte) {
	start, line := l.pos, l.line
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case q:
			l.pos++
			tok := l.emit(String, start, line)
			tok.Quote = q
			// Malformed escapes are kept verbatim.
			if v, err := Unquote(string(l.src[start+1 : l.pos-1])); err == nil {
				tok.Value = v
			} else {
				tok.Value = string(l.src[start+1 : l.pos-1])
			}
			return
		case '\\':
			l.pos++
			if l.pos < len(l.src) {
				if l.src[l.pos] == '\n' {
					l.line++
				} else if l.src[l.pos] == '\r' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n' {
					l.pos++
					l.line++
				}
				l.pos++
			}
		case '\n', '\r':
			tok := l.emit(Invalid, start, line)
			tok.Quote = q
			return
		default:
			l.pos++
		}
	}
	tok := l.emit(Invalid, start, line)
	tok.Quote = q
}

// scanTemplate scans one template piece starting at l.pos, which is just past
// the opening backtick or the closing brace of a substitution.
func (l *lexer) scanTemplate(start, line int) error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '`':
			l.pos++
			l.emit(Template, start, line)
			return nil
		case c == '\\':
			l.pos++
			if l.pos < len(l.src) {
				if l.src[l.pos] == '\n' {
					l.line++
				}
				l.pos++
			}
		case c == '$' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '{':
			l.pos += 2
			l.tpl = append(l.tpl, l.braces)
			l.emit(Template, start, line)
			return nil
		default:
			if c == '\n' {
				l.line++
			}
			l.pos++
		}
	}
	return l.errorf(start, "unterminated template literal")
}

func (l *lexer) scanNumber() {
	start, line := l.pos, l.line
	hex := false
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			hex = true
		}
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(c) || c == '_' || c == '.' || isASCIILetter(c):
			l.pos++
		case (c == '+' || c == '-') && !hex && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			l.emit(Number, start, line)
			return
		}
	}
	l.emit(Number, start, line)
}

// regexAllowed decides whether a slash at the current position starts a
// regular expression literal, judging by the previous token.
func (l *lexer) regexAllowed() bool {
	if len(l.toks) == 0 {
		return true
	}
	prev := l.toks[len(l.toks)-1]
	switch prev.Kind {
	case Ident:
		return regexKeywords[prev.Value]
	case Template:
		return len(prev.Value) >= 2 && prev.Value[len(prev.Value)-2:] == "${"
	case Punct:
		switch prev.Value {
		case ")", "]", "}", "++", "--":
			return false
		case "<":
			// JSX closing tag: </div>
			return prev.End != l.pos
		}
		return true
	}
	return false
}

// scanRegex scans a regular expression literal. It reports false and leaves
// the position untouched when the literal does not end on the same line.
func (l *lexer) scanRegex() bool {
	start, line := l.pos, l.line
	pos := l.pos + 1
	inClass := false
	for pos < len(l.src) {
		c := l.src[pos]
		switch {
		case c == '\n' || c == '\r':
			return false
		case c == '\\':
			pos += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			pos++
			for pos < len(l.src) && (isASCIILetter(l.src[pos]) || isDigit(l.src[pos])) {
				pos++
			}
			l.pos = pos
			l.emit(Regex, start, line)
			return true
		}
		pos++
	}
	return false
}

func (l *lexer) scanPunct() {
	start, line := l.pos, l.line
	rest := l.src[l.pos:]
	for _, p := range puncts {
		if len(rest) >= len(p) && string(rest[:len(p)]) == p {
			if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
				continue
			}
			l.pos += len(p)
			l.emit(Punct, start, line)
			return
		}
	}
	_, size := utf8.DecodeRune(rest)
	l.pos += size
	switch rest[0] {
	case '{':
		l.braces++
	case '}':
		l.braces--
	}
	l.emit(Punct, start, line)
}

// ---------------------------------------------------------------------------
// JSX
// ---------------------------------------------------------------------------

// jsxAllowed reports whether the '<' at l.pos opens a JSX element: it must
// be followed by a tag name or '>' and stand where an expression starts.
func (l *lexer) jsxAllowed() bool {
	if l.pos+1 >= len(l.src) {
		return false
	}
	next, _ := utf8.DecodeRune(l.src[l.pos+1:])
	if next != '>' && !isIdentStart(next) {
		return false
	}
	return l.regexAllowed()
}

// tryElement scans a JSX element. If the text turns out not to be one, such
// as a TypeScript generic arrow <T,>(x: T) => x, the lexer is rewound and
// false is returned.
func (l *lexer) tryElement() bool {
	saved := *l
	if err := l.scanElement(); err != nil {
		*l = saved
		return false
	}
	return true
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) punct(n int) {
	start := l.pos
	l.pos += n
	l.emit(Punct, start, l.line)
}

// scanElement scans a JSX element or fragment starting at '<'.
func (l *lexer) scanElement() error {
	l.punct(1)
	if err := l.skipSpace(); err != nil {
		return err
	}
	name := ""
	if l.peek(0) != '>' {
		var ok bool
		if name, ok = l.scanTagName(); !ok {
			return l.errorf(l.pos, "bad JSX tag name")
		}
	}
	selfClosing, err := l.scanAttributes()
	if err != nil || selfClosing {
		return err
	}
	return l.scanChildren(name)
}

// scanTagName scans a tag or attribute name such as div, Form.Item,
// svg:path or data-id.
func (l *lexer) scanTagName() (string, bool) {
	start, line := l.pos, l.line
	r, size := utf8.DecodeRune(l.src[l.pos:])
	if !isIdentStart(r) {
		return "", false
	}
	l.pos += size
	for l.pos < len(l.src) {
		r, size = utf8.DecodeRune(l.src[l.pos:])
		if !isIdentPart(r) && r != '-' && r != '.' && r != ':' {
			break
		}
		l.pos += size
	}
	return l.emit(Ident, start, line).Value, true
}

// scanAttributes scans up to and including the '>' or '/>' ending an
// opening tag.
func (l *lexer) scanAttributes() (selfClosing bool, err error) {
	for {
		if err := l.skipSpace(); err != nil {
			return false, err
		}
		switch c := l.peek(0); {
		case l.pos >= len(l.src):
			return false, l.errorf(l.pos, "unterminated JSX tag")
		case c == '>':
			l.punct(1)
			return false, nil
		case c == '/' && l.peek(1) == '>':
			l.punct(2)
			return true, nil
		case c == '{':
			if err := l.scanContainer(); err != nil {
				return false, err
			}
		default:
			if _, ok := l.scanTagName(); !ok {
				return false, l.errorf(l.pos, "unexpected %q in JSX tag", c)
			}
			if err := l.skipSpace(); err != nil {
				return false, err
			}
			if l.peek(0) != '=' {
				continue
			}
			l.punct(1)
			if err := l.skipSpace(); err != nil {
				return false, err
			}
			if err := l.scanAttrValue(); err != nil {
				return false, err
			}
		}
	}
}

func (l *lexer) scanAttrValue() error {
	switch q := l.peek(0); q {
	case '"', '\'':
		// JSX attribute strings have no escapes and may span lines.
		start, line := l.pos, l.line
		end := bytes.IndexByte(l.src[l.pos+1:], q)
		if end < 0 {
			return l.errorf(start, "unterminated JSX attribute")
		}
		l.pos += end + 2
		tok := l.emit(String, start, line)
		tok.Quote = q
		tok.Value = string(l.src[start+1 : l.pos-1])
		l.line += bytes.Count(l.src[start:l.pos], []byte{'\n'})
		return nil
	case '{':
		return l.scanContainer()
	case '<':
		return l.scanElement()
	}
	return l.errorf(l.pos, "bad JSX attribute value")
}

// scanContainer scans a {...} expression container.
func (l *lexer) scanContainer() error {
	depth, tpls := l.braces, len(l.tpl)
	l.scanPunct()
	for {
		if err := l.skipSpace(); err != nil {
			return err
		}
		if l.pos >= len(l.src) {
			return l.errorf(l.pos, "unterminated JSX expression")
		}
		if l.src[l.pos] == '}' && l.braces == depth+1 && len(l.tpl) == tpls {
			l.scanPunct()
			return nil
		}
		if err := l.scan(); err != nil {
			return err
		}
	}
}

// scanChildren skips element text and scans nested elements and
// containers up to the closing tag of name.
func (l *lexer) scanChildren(name string) error {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '{':
			if err := l.scanContainer(); err != nil {
				return err
			}
		case '<':
			if l.closingTagAhead() {
				return l.scanClosingTag(name)
			}
			if err := l.scanElement(); err != nil {
				return err
			}
		case '\n':
			l.line++
			l.nl = true
			l.pos++
		default:
			l.pos++
		}
	}
	return l.errorf(l.pos, "unclosed JSX element <%s>", name)
}

func (l *lexer) closingTagAhead() bool {
	j := l.pos + 1
	for j < len(l.src) && (l.src[j] == ' ' || l.src[j] == '\t' || l.src[j] == '\r' || l.src[j] == '\n') {
		j++
	}
	return j < len(l.src) && l.src[j] == '/'
}

func (l *lexer) scanClosingTag(name string) error {
	l.punct(1)
	if err := l.skipSpace(); err != nil {
		return err
	}
	l.punct(1)
	if err := l.skipSpace(); err != nil {
		return err
	}
	got := ""
	if l.peek(0) != '>' {
		var ok bool
		if got, ok = l.scanTagName(); !ok {
			return l.errorf(l.pos, "bad JSX closing tag")
		}
		if err := l.skipSpace(); err != nil {
			return err
		}
	}
	if got != name {
		return l.errorf(l.pos, "</%s> does not close <%s>", got, name)
	}
	if l.peek(0) != '>' {
		return l.errorf(l.pos, "unterminated JSX closing tag")
	}
	l.punct(1)
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIILetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '\u200C' || r == '\u200D' ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) || unicode.Is(unicode.Pc, r)
}
