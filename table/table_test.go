package table

import (
	"reflect"
	"testing"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want LocaleID
	}{
		{"zh", Zh},
		{"cn", Zh},
		{"zh_CN", Zh},
		{"zh-Hans", Zh},
		{"EN", En},
		{"en-US", En},
	}
	for _, tc := range tests {
		got, err := ParseLocale(tc.in)
		if err != nil {
			t.Fatalf("ParseLocale(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLocale(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLocale("fr"); err == nil {
		t.Fatal("ParseLocale(fr) should fail")
	}
}

func TestTableOrderAndDelete(t *testing.T) {
	tbl := New(Combined, map[LocaleID]string{Zh: "lang.ts", En: "lang.ts"})
	tbl.Append(NewEntry("a", "甲", "A"))
	tbl.Append(NewEntry("b", "乙", "B"))
	tbl.Append(NewEntry("c", "丙", "C"))

	if got := tbl.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if !tbl.Delete("b") {
		t.Fatal("Delete(b) = false")
	}
	if tbl.Delete("b") {
		t.Fatal("second Delete(b) = true")
	}
	if got := tbl.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("Keys() after delete = %v", got)
	}
	e, ok := tbl.Get("c")
	if !ok || e.Value(En) != "C" {
		t.Fatalf("Get(c) = %+v, %v", e, ok)
	}

	// Re-appending an existing key keeps its position.
	tbl.Append(NewEntry("a", "新", "new"))
	if got := tbl.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("Keys() after re-append = %v", got)
	}
	if e, _ := tbl.Get("a"); e.Value(Zh) != "新" {
		t.Fatalf("a zh = %q, want 新", e.Value(Zh))
	}
}

func TestEntryValueMissingLocale(t *testing.T) {
	e := Entry{Key: "k", Values: map[LocaleID]string{Zh: "v"}}
	if got := e.Value(En); got != "" {
		t.Fatalf("Value(en) = %q, want empty", got)
	}
	var zero Entry
	if got := zero.Value(Zh); got != "" {
		t.Fatalf("zero Value(zh) = %q, want empty", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := New(Split, map[LocaleID]string{Zh: "lang.cn.js", En: "lang.en.js"})
	tbl.Append(NewEntry("k", "v", ""))

	c := tbl.Clone()
	c.Set("k", En, "changed")
	c.Append(NewEntry("new", "", ""))
	c.Paths[En] = "other.js"

	if e, _ := tbl.Get("k"); e.Value(En) != "" {
		t.Fatalf("original mutated: en = %q", e.Value(En))
	}
	if tbl.Has("new") {
		t.Fatal("original gained key from clone")
	}
	if tbl.Paths[En] != "lang.en.js" {
		t.Fatalf("original paths mutated: %v", tbl.Paths)
	}

	// Entries hands out copies too.
	entries := tbl.Entries()
	entries[0].Values[Zh] = "x"
	if e, _ := tbl.Get("k"); e.Value(Zh) != "v" {
		t.Fatal("Entries() leaked internal map")
	}
}

func TestSameSource(t *testing.T) {
	a := New(Combined, map[LocaleID]string{Zh: "lang.ts", En: "lang.ts"})
	b := New(Combined, map[LocaleID]string{Zh: "lang.ts", En: "lang.ts"})
	c := New(Combined, map[LocaleID]string{Zh: "other.ts", En: "other.ts"})
	d := New(Split, map[LocaleID]string{Zh: "lang.ts", En: "lang.ts"})

	if !a.SameSource(b) {
		t.Fatal("a and b should be comparable")
	}
	if a.SameSource(c) {
		t.Fatal("different paths should not be comparable")
	}
	if a.SameSource(d) {
		t.Fatal("different layouts should not be comparable")
	}
	if got := a.PathSet(); !reflect.DeepEqual(got, []string{"lang.ts"}) {
		t.Fatalf("PathSet() = %v", got)
	}
}

func TestMergeColumns(t *testing.T) {
	tbl := Merge(Split, nil, map[LocaleID][]KV{
		Zh: {{"a", "甲"}, {"b", "乙"}},
		En: {{"c", "C"}, {"a", "A"}},
	})
	if got := tbl.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Keys() = %v", got)
	}
	b, _ := tbl.Get("b")
	if b.Value(En) != "" {
		t.Fatalf("b en = %q, want empty", b.Value(En))
	}
	if _, ok := b.Values[En]; !ok {
		t.Fatal("missing locale should be present as empty string")
	}
	c, _ := tbl.Get("c")
	if c.Value(Zh) != "" || c.Value(En) != "C" {
		t.Fatalf("c = %+v", c)
	}
}

func TestKeysDistinct(t *testing.T) {
	usages := []Usage{{Key: "a"}, {Key: "b"}, {Key: "a"}}
	if got := Keys(usages); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Keys() = %v", got)
	}
}
