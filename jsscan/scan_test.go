package jsscan

import (
	"errors"
	"reflect"
	"testing"
)

func kindsAndValues(toks []Token) ([]Kind, []string) {
	var kinds []Kind
	var values []string
	for _, t := range toks {
		kinds = append(kinds, t.Kind)
		values = append(values, t.Value)
	}
	return kinds, values
}

func TestTokenizeBasic(t *testing.T) {
	src := []byte(`const cn = { "a": 'b', c: 1 }; // trailing`)
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	_, values := kindsAndValues(toks)
	want := []string{"const", "cn", "=", "{", "a", ":", "b", ",", "c", ":", "1", "}", ";"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("values = %q, want %q", values, want)
	}
	if toks[4].Kind != String || toks[4].Quote != '"' {
		t.Fatalf("token 4 = %+v, want double-quoted string", toks[4])
	}
	if toks[6].Quote != '\'' {
		t.Fatalf("token 6 quote = %q, want single quote", toks[6].Quote)
	}
	if got := string(src[toks[4].Start:toks[4].End]); got != `"a"` {
		t.Fatalf("raw string = %q", got)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := Tokenize([]byte(`'it\'s' "你好" "tab\there" "\x41\u{1F600}"`))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	_, values := kindsAndValues(toks)
	want := []string{"it's", "你好", "tab\there", "A\U0001F600"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("values = %q, want %q", values, want)
	}
}

func TestTokenizeLinesAndNewlines(t *testing.T) {
	toks, err := Tokenize([]byte("a\n/* x\n y */ b\nc"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}
	lines := []int{toks[0].Line, toks[1].Line, toks[2].Line}
	if !reflect.DeepEqual(lines, []int{1, 3, 4}) {
		t.Fatalf("lines = %v, want [1 3 4]", lines)
	}
	if toks[0].NewlineBefore || !toks[1].NewlineBefore || !toks[2].NewlineBefore {
		t.Fatalf("unexpected NewlineBefore flags: %+v", toks)
	}
}

func TestTokenizeTemplateSubstitution(t *testing.T) {
	toks, err := Tokenize([]byte("x = `a ${t('k')} b ${ {c: 1}.c } end`; y"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	_, values := kindsAndValues(toks)
	want := []string{"x", "=", "`a ${", "t", "(", "k", ")", "} b ${", "{", "c", ":", "1", "}", ".", "c", "} end`", ";", "y"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("values = %q, want %q", values, want)
	}
}

func TestTokenizeRegexVersusDivision(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Kind
	}{
		{name: "regex after assignment", src: `a = /x'y/g`, want: []Kind{Ident, Punct, Regex}},
		{name: "division after identifier", src: `a / b / c`, want: []Kind{Ident, Punct, Ident, Punct, Ident}},
		{name: "regex after return", src: `return /[/]/.test(s)`, want: []Kind{Ident, Regex, Punct, Ident, Punct, Ident, Punct}},
		{name: "division after paren", src: `(a) / 2`, want: []Kind{Punct, Ident, Punct, Punct, Number}},
		{name: "jsx closing tag", src: `<p>{x}</p>`, want: []Kind{Punct, Ident, Punct, Punct, Ident, Punct, Punct, Punct, Ident, Punct}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := Tokenize([]byte(tc.src))
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			kinds, _ := kindsAndValues(toks)
			if !reflect.DeepEqual(kinds, tc.want) {
				t.Fatalf("kinds = %v, want %v", kinds, tc.want)
			}
		})
	}
}

func TestTokenizeJSXApostropheIsRecovered(t *testing.T) {
	toks, err := Tokenize([]byte("<p>Don't panic</p>\nt('ok')"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var sawInvalid, sawOK bool
	for _, tok := range toks {
		if tok.Kind == Invalid {
			sawInvalid = true
		}
		if tok.Kind == String && tok.Value == "ok" {
			sawOK = true
		}
	}
	if !sawInvalid || !sawOK {
		t.Fatalf("expected an Invalid token and a recovered string, got %+v", toks)
	}
}

func TestTokenizeErrors(t *testing.T) {
	for _, src := range []string{"a /* never closed", "`open ${x"} {
		_, err := Tokenize([]byte(src))
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Tokenize(%q) error = %v, want *SyntaxError", src, err)
		}
	}
}

func TestTokenizeGenericsAndOptionalChaining(t *testing.T) {
	toks, err := Tokenize([]byte(`const m: Map<string, Array<string>> = a?.b ?? c?.5:1`))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	_, values := kindsAndValues(toks)
	want := []string{"const", "m", ":", "Map", "<", "string", ",", "Array", "<", "string", ">", ">", "=", "a", "?.", "b", "??", "c", "?", ".5", ":", "1"}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("values = %q, want %q", values, want)
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		q    byte
		want string
	}{
		{in: "你好", q: '"', want: `"你好"`},
		{in: `say "hi"`, q: '"', want: `"say \"hi\""`},
		{in: `it's`, q: '\'', want: `'it\'s'`},
		{in: "a\nb\\c", q: '"', want: `"a\nb\\c"`},
		{in: "\x01", q: '"', want: `"\x01"`},
	}
	for _, tc := range tests {
		got := Quote(tc.in, tc.q)
		if got != tc.want {
			t.Fatalf("Quote(%q) = %s, want %s", tc.in, got, tc.want)
		}
		back, err := Unquote(got[1 : len(got)-1])
		if err != nil {
			t.Fatalf("Unquote(%s): %v", got, err)
		}
		if back != tc.in {
			t.Fatalf("Unquote(Quote(%q)) = %q", tc.in, back)
		}
	}
}

func TestTokenizeJSXSkipsElementText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "apostrophe",
			src:  "<p>Don't {x}</p>",
			want: []string{"<", "p", ">", "{", "x", "}", "<", "/", "p", ">"},
		},
		{
			name: "url and comment openers",
			src:  "<a href='http://x.io'>http://x.io /* {y}</a>",
			want: []string{"<", "a", "href", "=", "http://x.io", ">", "{", "y", "}", "<", "/", "a", ">"},
		},
		{
			name: "fragment",
			src:  "f(<>it's</>)",
			want: []string{"f", "(", "<", ">", "<", "/", ">", ")"},
		},
		{
			name: "comparison is not an element",
			src:  "a <b; c",
			want: []string{"a", "<", "b", ";", "c"},
		},
		{
			name: "generic arrow falls back",
			src:  "const id = <T,>(x: T) => x",
			want: []string{"const", "id", "=", "<", "T", ",", ">", "(", "x", ":", "T", ")", "=>", "x"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := TokenizeJSX([]byte(tc.src))
			if err != nil {
				t.Fatalf("TokenizeJSX: %v", err)
			}
			_, values := kindsAndValues(toks)
			if !reflect.DeepEqual(values, tc.want) {
				t.Fatalf("values = %q, want %q", values, tc.want)
			}
		})
	}
}

func TestTokenizeJSXLines(t *testing.T) {
	src := "const v = (\n  <div title=\"a\nb\">\n    Don't\n    {t('k')}\n  </div>\n)\nt('after')"
	toks, err := TokenizeJSX([]byte(src))
	if err != nil {
		t.Fatalf("TokenizeJSX: %v", err)
	}
	lines := make(map[string]int)
	for _, tok := range toks {
		if tok.Kind == String {
			lines[tok.Value] = tok.Line
		}
	}
	want := map[string]int{"a\nb": 2, "k": 5, "after": 8}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("string lines = %v, want %v", lines, want)
	}
}
