package jsfile

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/minios-linux/i18nsync/jsscan"
	"github.com/minios-linux/i18nsync/table"
)

const langTS = `import VueI18n from "vue-i18n";
const cn: VueI18n.LocaleMessageObject = {
  "用户登录": "用户登录",
  "请输入用户名": "请输入用户名",
  "登录": "登录",
  "button.clicked": "button.clicked",
  "welcome.message": "welcome.message"
};
const en: VueI18n.LocaleMessageObject = {
  "用户登录": "用户登录_en",
  "请输入用户名": "请输入用户名_en",
  "登录": "登录_en",
  "button.clicked": "button.clicked_en",
  "welcome.message": "welcome.message_en"
};
const i18n: VueI18n.I18nOptions = {
  messages: {
    cn,
    en
  }
};
export default i18n;
`

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func mustApply(t *testing.T, src string, changes ...Change) (string, Stats) {
	t.Helper()
	out, stats, err := mustParse(t, src).Apply(changes)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return string(out), stats
}

func TestParseCombinedModule(t *testing.T) {
	f := mustParse(t, langTS)

	var names []string
	for _, b := range f.Bindings {
		names = append(names, b.Name)
	}
	if !reflect.DeepEqual(names, []string{"cn", "en", "i18n"}) {
		t.Fatalf("bindings = %v", names)
	}

	cn := f.Binding("cn")
	if cn.Declare != "const" || cn.Annot != ": VueI18n.LocaleMessageObject" {
		t.Fatalf("cn declare=%q annot=%q", cn.Declare, cn.Annot)
	}
	got := f.Binding("en").Strings()
	if len(got) != 5 {
		t.Fatalf("en has %d strings, want 5", len(got))
	}
	if got[2] != (table.KV{Key: "登录", Value: "登录_en"}) {
		t.Fatalf("en[2] = %+v", got[2])
	}
	if strs := f.Binding("i18n").Strings(); len(strs) != 0 {
		t.Fatalf("i18n strings = %v, want none", strs)
	}
	if f.Binding("missing") != nil {
		t.Fatal("Binding(missing) should be nil")
	}
}

func TestParseKeyForms(t *testing.T) {
	src := `export const $lang = {
  plain: 'a',
  "double": "b",
  'single': 'c',
  42: "d",
  nested: { x: "no" },
  concat: "x" + "y",
  tpl: ` + "`t`" + `,
  ...spread,
  short,
  method() { return "m" },
  [computed]: "e",
  plain: 'last',
} as const
let after = 1
`
	f := mustParse(t, src)
	b := f.Binding("$lang")
	if b == nil || b.Prefix != "export " {
		t.Fatalf("binding = %+v", b)
	}
	want := []table.KV{{Key: "plain", Value: "last"}, {Key: "double", Value: "b"}, {Key: "single", Value: "c"}, {Key: "42", Value: "d"}}
	if got := b.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Strings() = %v, want %v", got, want)
	}
	if f.Binding("after") == nil {
		t.Fatal("binding after an unterminated statement was not found")
	}
}

func TestParseSkipsNonObjectInitializers(t *testing.T) {
	src := "const x = foo(1, { a: 'b' })\nconst m: Record<string, Array<string>> = new Map()\nvar $lang = { k: 'v' }\nfunction f() { const cn = { inner: 'x' } }\n"
	f := mustParse(t, src)
	if f.Binding("x").Object != nil {
		t.Fatal("call initializer parsed as object")
	}
	if f.Binding("m") == nil {
		t.Fatal("typed binding m not found")
	}
	if got := f.Binding("$lang").Strings(); !reflect.DeepEqual(got, []table.KV{{Key: "k", Value: "v"}}) {
		t.Fatalf("$lang = %v", got)
	}
	if f.Binding("cn") != nil {
		t.Fatal("nested binding should not be top-level")
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"unterminated string": "const cn = {\"a\": \"b};\n",
		"unterminated object": "const cn = {\"a\": \"b\"\n",
		"unbalanced":          "const cn = {\"a\": \"b\"]};\n",
		"comment":             "const cn = {} /* open",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			var se *jsscan.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse error = %v, want *jsscan.SyntaxError", err)
			}
		})
	}
}

func TestApplyEmptyIsIdentity(t *testing.T) {
	out, stats := mustApply(t, langTS,
		Change{Binding: "cn"},
		Change{Binding: "en"},
	)
	if out != langTS {
		t.Fatalf("empty change rewrote the file:\n%s", out)
	}
	if stats.Changed() {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestApplyEditInPlace(t *testing.T) {
	src := "const cn = {\"hello\": \"你好\"};\nconst en = {\"hello\": \"Hi\"};\n"
	out, stats := mustApply(t, src, Change{Binding: "en", Ops: Ops{Edit: []table.KV{{Key: "hello", Value: "Hello"}}}})
	want := "const cn = {\"hello\": \"你好\"};\nconst en = {\"hello\": \"Hello\"};\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if stats.Updated != 1 || stats.Fallbacks != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestApplyEditCombinedModule(t *testing.T) {
	out, _ := mustApply(t, langTS, Change{Binding: "en", Ops: Ops{Edit: []table.KV{{Key: "登录", Value: "Log in"}}}})
	want := strings.Replace(langTS, `"登录": "登录_en"`, `"登录": "Log in"`, 1)
	if out != want {
		t.Fatalf("out =\n%s\nwant\n%s", out, want)
	}
}

func TestApplyEditKeepsQuoteAndEscapes(t *testing.T) {
	src := "var $lang = {\n  'a': 'x',\n  b: \"y\"\n}\n"
	out, _ := mustApply(t, src, Change{Binding: "$lang", Ops: Ops{Edit: []table.KV{
		{Key: "a", Value: "it's"},
		{Key: "b", Value: "say \"hi\"\n中文"},
	}}})
	want := "var $lang = {\n  'a': 'it\\'s',\n  b: \"say \\\"hi\\\"\\n中文\"\n}\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

const commented = `const cn = {
  // greeting
  "a": "甲",
  "b": "乙", // second
  'c': '丙'
};
`

func TestApplyDelete(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"a", "const cn = {\n  // greeting\n  \"b\": \"乙\", // second\n  'c': '丙'\n};\n"},
		{"b", "const cn = {\n  // greeting\n  \"a\": \"甲\",\n  'c': '丙'\n};\n"},
		{"c", "const cn = {\n  // greeting\n  \"a\": \"甲\",\n  \"b\": \"乙\" // second\n};\n"},
		{"missing", commented},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			out, _ := mustApply(t, commented, Change{Binding: "cn", Ops: Ops{Delete: []string{tc.key}}})
			if out != tc.want {
				t.Fatalf("out =\n%s\nwant\n%s", out, tc.want)
			}
		})
	}
}

func TestApplyDeleteSharedLine(t *testing.T) {
	tests := []struct {
		name string
		src  string
		key  string
		want string
	}{
		{
			name: "last on line",
			src:  "const cn = {\n  \"a\": \"1\", \"b\": \"2\"\n};\n",
			key:  "b",
			want: "const cn = {\n  \"a\": \"1\"\n};\n",
		},
		{
			name: "first on line",
			src:  "const cn = {\n  \"a\": \"1\", \"b\": \"2\"\n};\n",
			key:  "a",
			want: "const cn = {\n  \"b\": \"2\"\n};\n",
		},
		{
			name: "inline comment",
			src:  "const cn = {\n  \"a\": \"1\", /* keep */ \"b\": \"2\"\n};\n",
			key:  "b",
			want: "const cn = {\n  \"a\": \"1\" /* keep */\n};\n",
		},
		{
			name: "crlf",
			src:  "const cn = {\r\n  \"a\": \"1\", \"b\": \"2\"\r\n};\r\n",
			key:  "b",
			want: "const cn = {\r\n  \"a\": \"1\"\r\n};\r\n",
		},
		{
			name: "single line object",
			src:  "const cn = { \"a\": \"1\", \"b\": \"2\" };\n",
			key:  "b",
			want: "const cn = { \"a\": \"1\" };\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, stats := mustApply(t, tc.src, Change{Binding: "cn", Ops: Ops{Delete: []string{tc.key}}})
			if out != tc.want {
				t.Fatalf("out = %q, want %q", out, tc.want)
			}
			if stats.Removed != 1 {
				t.Fatalf("Removed = %d, want 1", stats.Removed)
			}
		})
	}
}

func TestApplyDeleteAcrossCombinedModule(t *testing.T) {
	del := Ops{Delete: []string{"登录", "welcome.message"}}
	out, stats := mustApply(t, langTS, Change{Binding: "cn", Ops: del}, Change{Binding: "en", Ops: del})
	want := strings.NewReplacer(
		"  \"登录\": \"登录\",\n", "",
		"  \"登录\": \"登录_en\",\n", "",
		"\"button.clicked\": \"button.clicked\",\n  \"welcome.message\": \"welcome.message\"\n", "\"button.clicked\": \"button.clicked\"\n",
		"\"button.clicked\": \"button.clicked_en\",\n  \"welcome.message\": \"welcome.message_en\"\n", "\"button.clicked\": \"button.clicked_en\"\n",
	).Replace(langTS)
	if out != want {
		t.Fatalf("out =\n%s\nwant\n%s", out, want)
	}
	if stats.Removed != 4 {
		t.Fatalf("Removed = %d, want 4", stats.Removed)
	}
}

func TestApplyPush(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "multiline",
			src:  commented,
			want: strings.Replace(commented, "'c': '丙'\n", "'c': '丙',\n  \"d\": \"丁\"\n", 1),
		},
		{
			name: "trailing comma and single quotes",
			src:  "const cn = {\n    a: 'A',\n};\n",
			want: "const cn = {\n    a: 'A',\n    'd': '丁',\n};\n",
		},
		{
			name: "inline",
			src:  "const cn = { a: \"A\" };\n",
			want: "const cn = { a: \"A\", \"d\": \"丁\" };\n",
		},
		{
			name: "empty",
			src:  "const cn = {};\n",
			want: "const cn = {\n  \"d\": \"丁\"\n};\n",
		},
		{
			name: "empty with comment",
			src:  "const cn = {\n  // todo\n};\n",
			want: "const cn = {\n  // todo\n  \"d\": \"丁\"\n};\n",
		},
		{
			name: "compact separator",
			src:  "const cn = {\n\t\"a\":\"A\"\n}\n",
			want: "const cn = {\n\t\"a\":\"A\",\n\t\"d\":\"丁\"\n}\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, stats := mustApply(t, tc.src, Change{Binding: "cn", Ops: Ops{Push: []table.KV{{Key: "d", Value: "丁"}}}})
			if out != tc.want {
				t.Fatalf("out =\n%q\nwant\n%q", out, tc.want)
			}
			if stats.Inserted != 1 {
				t.Fatalf("Inserted = %d, want 1", stats.Inserted)
			}
			f := mustParse(t, out)
			if got := f.Binding("cn").Strings(); got[len(got)-1] != (table.KV{Key: "d", Value: "丁"}) {
				t.Fatalf("reparsed strings = %v", got)
			}
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ops := Ops{
		Push:   []table.KV{{Key: "new", Value: "新"}},
		Edit:   []table.KV{{Key: "a", Value: "改"}},
		Delete: []string{"b"},
	}
	once, _ := mustApply(t, commented, Change{Binding: "cn", Ops: ops})
	twice, _ := mustApply(t, once, Change{Binding: "cn", Ops: ops})
	if once != twice {
		t.Fatalf("second application changed the file:\n%s\nvs\n%s", once, twice)
	}
}

func TestApplyEditFallsBackToPush(t *testing.T) {
	out, stats := mustApply(t, "var $lang = {\n  \"k\": \"v\"\n};\n",
		Change{Binding: "$lang", Ops: Ops{Edit: []table.KV{{Key: "gone", Value: "x"}}}})
	want := "var $lang = {\n  \"k\": \"v\",\n  \"gone\": \"x\"\n};\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if stats.Fallbacks != 1 {
		t.Fatalf("Fallbacks = %d, want 1", stats.Fallbacks)
	}
}

func TestApplyDuplicateKeys(t *testing.T) {
	src := "const cn = {\n  \"a\": \"1\",\n  \"a\": \"2\"\n};\n"
	if got := mustParse(t, src).Binding("cn").Strings(); !reflect.DeepEqual(got, []table.KV{{Key: "a", Value: "2"}}) {
		t.Fatalf("Strings() = %v", got)
	}
	out, _ := mustApply(t, src, Change{Binding: "cn", Ops: Ops{Edit: []table.KV{{Key: "a", Value: "3"}}}})
	if want := "const cn = {\n  \"a\": \"3\",\n  \"a\": \"3\"\n};\n"; out != want {
		t.Fatalf("edit out = %q", out)
	}
	out, _ = mustApply(t, src, Change{Binding: "cn", Ops: Ops{Delete: []string{"a"}}})
	if want := "const cn = {\n};\n"; out != want {
		t.Fatalf("delete out = %q", out)
	}
}

func TestApplyCreatesMissingBinding(t *testing.T) {
	src := "const cn: Msgs = {\n  \"k\": \"v\"\n};\n\nexport default { cn };\n"
	out, stats := mustApply(t, src,
		Change{Binding: "cn"},
		Change{Binding: "en", Ops: Ops{Push: []table.KV{{Key: "k", Value: "V"}}}},
	)
	want := "const cn: Msgs = {\n  \"k\": \"v\"\n};\nconst en: Msgs = {\n  \"k\": \"V\"\n};\n\nexport default { cn };\n"
	if out != want {
		t.Fatalf("out =\n%s\nwant\n%s", out, want)
	}
	if !reflect.DeepEqual(stats.Created, []string{"en"}) {
		t.Fatalf("Created = %v", stats.Created)
	}
}

func TestApplyEditIntoNewBindingIsNotAFallback(t *testing.T) {
	out, stats := mustApply(t, "",
		Change{Binding: "$lang", Declare: "var", Ops: Ops{
			Push: []table.KV{{Key: "n", Value: "n"}},
			Edit: []table.KV{{Key: "k", Value: "K"}},
		}})
	want := "var $lang = {\n  \"n\": \"n\",\n  \"k\": \"K\"\n};\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if stats.Fallbacks != 0 || stats.Inserted != 2 {
		t.Fatalf("stats = %+v, want 2 inserts and no fallback", stats)
	}
}

func TestApplyAppendsBindingAtEOF(t *testing.T) {
	out, _ := mustApply(t, "// generated\nexport {}",
		Change{Binding: "$lang", Declare: "var", Ops: Ops{Push: []table.KV{{Key: "k", Value: "v"}}}})
	want := "// generated\nexport {}\n\nvar $lang = {\n  \"k\": \"v\"\n};\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestApplyRejectsNonObjectBinding(t *testing.T) {
	f := mustParse(t, "const cn = load();\n")
	_, _, err := f.Apply([]Change{{Binding: "cn", Ops: Ops{Push: []table.KV{{Key: "k", Value: "v"}}}}})
	if err == nil {
		t.Fatal("Apply should fail for a non-object binding")
	}
}

func TestNewSource(t *testing.T) {
	got := string(NewSource(Change{Binding: "$lang", Declare: "var", Ops: Ops{Push: []table.KV{{Key: "k", Value: "值"}, {Key: "x", Value: "y"}}}}))
	want := "var $lang = {\n  \"k\": \"值\",\n  \"x\": \"y\"\n};\n"
	if got != want {
		t.Fatalf("NewSource = %q, want %q", got, want)
	}
	if got := string(NewSource(Change{Binding: "$lang"})); got != "" {
		t.Fatalf("NewSource without ops = %q, want empty", got)
	}
}
