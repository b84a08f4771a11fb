// Package jsfile reads and patches JavaScript / TypeScript locale modules:
// files whose top-level variable bindings are initialized to object
// literals of "key": "string" pairs.
//
//	const cn: VueI18n.LocaleMessageObject = {
//	  "登录": "登录",
//	  "button.clicked": "button.clicked"
//	};
//
// Parsing records byte offsets for every binding and property. Patching
// regenerates only the body of the object literals it touches, so comments,
// indentation and unrelated code keep their exact bytes.
package jsfile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/minios-linux/i18nsync/jsscan"
	"github.com/minios-linux/i18nsync/table"
)

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// File is a parsed locale module.
type File struct {
	Src      []byte
	Bindings []*Binding
}

// Binding is one top-level variable declarator.
type Binding struct {
	Name string
	// Declare is the declaration keyword: const, let or var.
	Declare string
	// Prefix holds modifiers written before the keyword, such as "export ".
	Prefix string
	// Annot is the raw type annotation including the colon, or "".
	Annot string
	// StmtStart and StmtEnd delimit the whole declaration statement.
	StmtStart, StmtEnd int
	// Object is nil when the initializer is not an object literal.
	Object *Object
}

// Object is an object literal.
type Object struct {
	// Open and Close are the offsets of the braces.
	Open, Close int
	Props       []Property
}

// Property is one member of an object literal.
type Property struct {
	// Key is the decoded property name. Keyed is false for shorthand,
	// spread, computed and method members, whose Key may be empty.
	Key      string
	KeyQuote byte
	Keyed    bool

	// IsString is set when the value is a single string literal.
	IsString   bool
	Value      string
	ValueQuote byte

	Start, KeyEnd, ValStart, End int
	// Comma is the offset of the trailing comma, or -1.
	Comma int
	Line  int
}

// Binding returns the first binding called name, or nil.
func (f *File) Binding(name string) *Binding {
	for _, b := range f.Bindings {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Strings returns the string-valued properties of the binding's object in
// source order. For duplicate keys the last value wins and the first
// position is kept.
func (b *Binding) Strings() []table.KV {
	if b == nil || b.Object == nil {
		return nil
	}
	var out []table.KV
	pos := make(map[string]int)
	for _, p := range b.Object.Props {
		if !p.Keyed || !p.IsString {
			continue
		}
		if i, ok := pos[p.Key]; ok {
			out[i].Value = p.Value
			continue
		}
		pos[p.Key] = len(out)
		out = append(out, table.KV{Key: p.Key, Value: p.Value})
	}
	return out
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a locale module from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses src. Unterminated strings, comments or templates and
// unbalanced brackets are errors; anything else that is not a recognized
// binding is skipped.
func Parse(src []byte) (*File, error) {
	toks, err := jsscan.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, f: &File{Src: src}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.f, nil
}

type parser struct {
	src  []byte
	toks []jsscan.Token
	f    *File
}

// stmtKeywords start a new statement when they follow a line break, which
// ends an initializer written without a semicolon.
var stmtKeywords = map[string]bool{
	"const": true, "let": true, "var": true, "export": true, "import": true,
	"function": true, "class": true, "declare": true, "interface": true,
	"type": true, "enum": true, "if": true, "for": true, "while": true,
	"return": true, "module": true, "namespace": true,
}

func (p *parser) tok(i int) jsscan.Token {
	if i >= 0 && i < len(p.toks) {
		return p.toks[i]
	}
	return jsscan.Token{Kind: jsscan.EOF, Start: len(p.src), End: len(p.src), Line: p.lineAt(len(p.src))}
}

func (p *parser) lineAt(offset int) int {
	return bytes.Count(p.src[:offset], []byte{'\n'}) + 1
}

func (p *parser) errorf(t jsscan.Token, format string, args ...any) error {
	return &jsscan.SyntaxError{Offset: t.Start, Line: t.Line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() error {
	var stack []string
	for i := 0; i < len(p.toks); {
		t := p.toks[i]
		if t.Kind == jsscan.Invalid {
			return p.errorf(t, "unterminated string literal")
		}
		if len(stack) == 0 && t.Kind == jsscan.Ident && isDeclare(t.Value) && !p.tok(i-1).Is(".") {
			next, err := p.parseDeclaration(i)
			if err != nil {
				return err
			}
			if next > i {
				i = next
				continue
			}
		}
		if t.Kind == jsscan.Punct {
			switch t.Value {
			case "(", "[", "{":
				stack = append(stack, t.Value)
			case ")", "]", "}":
				if len(stack) == 0 || stack[len(stack)-1] != opener(t.Value) {
					return p.errorf(t, "unbalanced %q", t.Value)
				}
				stack = stack[:len(stack)-1]
			}
		}
		i++
	}
	if len(stack) > 0 {
		return p.errorf(p.tok(len(p.toks)), "unclosed %q", stack[len(stack)-1])
	}
	return nil
}

func isDeclare(s string) bool { return s == "const" || s == "let" || s == "var" }

func opener(closer string) string {
	switch closer {
	case ")":
		return "("
	case "]":
		return "["
	}
	return "{"
}

// parseDeclaration parses the declaration whose keyword is at index i and
// returns the index after it. It returns i when the tokens do not form a
// simple declarator list, leaving them to the generic scan.
func (p *parser) parseDeclaration(i int) (int, error) {
	kw := p.toks[i]
	stmtStart := kw.Start
	for k := i - 1; k >= 0 && k >= i-2; k-- {
		prev := p.toks[k]
		if prev.Kind == jsscan.Ident && (prev.Value == "export" || prev.Value == "declare") {
			stmtStart = prev.Start
			continue
		}
		break
	}
	prefix := string(p.src[stmtStart:kw.Start])

	var decls []*Binding
	j := i + 1
	for {
		name := p.tok(j)
		if name.Kind != jsscan.Ident {
			if len(decls) == 0 {
				return i, nil
			}
			return 0, p.errorf(name, "expected identifier after ','")
		}
		j++
		b := &Binding{Name: name.Value, Declare: kw.Value, Prefix: prefix, StmtStart: stmtStart}

		annotStart := name.End
		if p.tok(j).Is("!") {
			j++
		}
		if p.tok(j).Is(":") {
			end, err := p.skipType(j + 1)
			if err != nil {
				return 0, err
			}
			j = end
		}
		b.Annot = strings.TrimSpace(string(p.src[annotStart:p.tok(j).Start]))
		if len(decls) == 0 && !p.tok(j).Is("=") && !p.tok(j).Is(",") && !p.tok(j).Is(";") && !p.endsStatement(j) {
			return i, nil
		}

		if p.tok(j).Is("=") {
			j++
			if p.tok(j).Is("{") {
				obj, next, err := p.parseObject(j)
				if err != nil {
					return 0, err
				}
				b.Object = obj
				j = next
				for p.tok(j).Kind == jsscan.Ident && (p.tok(j).Value == "as" || p.tok(j).Value == "satisfies") {
					if j, err = p.skipType(j + 1); err != nil {
						return 0, err
					}
				}
				if !p.declaratorEnd(j) {
					// The object is only part of a larger expression.
					b.Object = nil
					if j, err = p.skipExpr(j); err != nil {
						return 0, err
					}
				}
			} else {
				var err error
				if j, err = p.skipExpr(j); err != nil {
					return 0, err
				}
			}
		}
		decls = append(decls, b)

		if p.tok(j).Is(",") {
			j++
			continue
		}
		stmtEnd := p.tok(j - 1).End
		if p.tok(j).Is(";") {
			stmtEnd = p.tok(j).End
			j++
		}
		for _, d := range decls {
			d.StmtEnd = stmtEnd
		}
		p.f.Bindings = append(p.f.Bindings, decls...)
		return j, nil
	}
}

func (p *parser) declaratorEnd(j int) bool {
	t := p.tok(j)
	return t.Kind == jsscan.EOF || t.Is(",") || t.Is(";") || p.endsStatement(j) || t.Is("}")
}

// endsStatement reports whether the token at j starts a new statement after
// a line break.
func (p *parser) endsStatement(j int) bool {
	t := p.tok(j)
	return t.Kind == jsscan.EOF || (t.NewlineBefore && t.Kind == jsscan.Ident && stmtKeywords[t.Value])
}

// skipType skips a type annotation starting at j. It stops before '=', ','
// or ';' at nesting depth zero, or at a statement keyword on a new line.
func (p *parser) skipType(j int) (int, error) {
	depth := 0
	for ; ; j++ {
		t := p.tok(j)
		if t.Kind == jsscan.EOF {
			if depth > 0 {
				return 0, p.errorf(t, "unterminated type annotation")
			}
			return j, nil
		}
		if t.Kind == jsscan.Invalid {
			return 0, p.errorf(t, "unterminated string literal")
		}
		if depth == 0 && (t.Is("=") || t.Is(",") || t.Is(";") || t.Is(")") || t.Is("}") || p.endsStatement(j)) {
			return j, nil
		}
		if t.Kind != jsscan.Punct {
			continue
		}
		switch t.Value {
		case "(", "[", "{", "<":
			depth++
		case ")", "]", "}", ">":
			depth--
		}
	}
}

// skipExpr skips an initializer expression starting at j and returns the
// index of the token that ends it.
func (p *parser) skipExpr(j int) (int, error) {
	depth := 0
	for ; ; j++ {
		t := p.tok(j)
		switch {
		case t.Kind == jsscan.EOF:
			if depth > 0 {
				return 0, p.errorf(t, "unexpected end of file")
			}
			return j, nil
		case t.Kind == jsscan.Invalid:
			return 0, p.errorf(t, "unterminated string literal")
		case depth == 0 && (t.Is(",") || t.Is(";") || t.Is(")") || t.Is("]") || t.Is("}")):
			return j, nil
		case depth == 0 && p.endsStatement(j):
			return j, nil
		case t.Kind == jsscan.Punct:
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
	}
}

// skipValue skips a property value starting at j and returns the index of
// the ',' or '}' that ends it.
func (p *parser) skipValue(j int) (int, error) {
	depth := 0
	for ; ; j++ {
		t := p.tok(j)
		switch {
		case t.Kind == jsscan.EOF:
			return 0, p.errorf(t, "unterminated object literal")
		case t.Kind == jsscan.Invalid:
			return 0, p.errorf(t, "unterminated string literal")
		case depth == 0 && (t.Is(",") || t.Is("}")):
			return j, nil
		case depth == 0 && (t.Is(")") || t.Is("]")):
			return 0, p.errorf(t, "unbalanced %q in object literal", t.Value)
		case t.Kind == jsscan.Punct:
			switch t.Value {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
	}
}

// parseObject parses the object literal whose '{' is at index j and returns
// it together with the index after its '}'.
func (p *parser) parseObject(j int) (*Object, int, error) {
	obj := &Object{Open: p.toks[j].Start}
	k := j + 1
	for {
		t := p.tok(k)
		if t.Kind == jsscan.EOF {
			return nil, 0, p.errorf(t, "unterminated object literal")
		}
		if t.Is("}") {
			obj.Close = t.Start
			return obj, k + 1, nil
		}
		if t.Is(",") {
			return nil, 0, p.errorf(t, "unexpected ','")
		}

		prop := Property{Start: t.Start, Comma: -1, Line: t.Line}
		named := false
		switch t.Kind {
		case jsscan.String:
			prop.Key, prop.KeyQuote, named = t.Value, t.Quote, true
		case jsscan.Ident, jsscan.Number:
			prop.Key, named = t.Value, true
		}

		var end int
		var err error
		if named && p.tok(k+1).Is(":") {
			prop.Keyed = true
			prop.KeyEnd = t.End
			vstart := k + 2
			if end, err = p.skipValue(vstart); err != nil {
				return nil, 0, err
			}
			if end == vstart {
				return nil, 0, p.errorf(p.tok(end), "missing value for %q", prop.Key)
			}
			prop.ValStart = p.toks[vstart].Start
			if v := p.toks[vstart]; end == vstart+1 && v.Kind == jsscan.String {
				prop.IsString, prop.Value, prop.ValueQuote = true, v.Value, v.Quote
			}
		} else {
			if end, err = p.skipValue(k); err != nil {
				return nil, 0, err
			}
			if !named || end != k+1 {
				prop.Key = ""
			}
			prop.KeyEnd = t.End
			prop.ValStart = t.Start
		}
		prop.End = p.toks[end-1].End

		k = end
		if p.tok(k).Is(",") {
			prop.Comma = p.toks[k].Start
			k++
		}
		obj.Props = append(obj.Props, prop)
	}
}
