package jsfile

import (
	"bytes"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/minios-linux/i18nsync/jsscan"
	"github.com/minios-linux/i18nsync/table"
)

// Ops is the change set for one binding, applied push, then edit, then
// delete.
type Ops struct {
	// Push upserts: a key already present gets the new value in place.
	Push []table.KV
	// Edit replaces values; a key that is no longer present is inserted.
	Edit []table.KV
	// Delete removes every keyed property with the key.
	Delete []string
}

// Empty reports whether o changes nothing.
func (o Ops) Empty() bool {
	return len(o.Push) == 0 && len(o.Edit) == 0 && len(o.Delete) == 0
}

// Change targets one binding.
type Change struct {
	Binding string
	Ops     Ops
	// Declare is the keyword used when the binding has to be created and
	// no sibling binding exists to copy it from. Defaults to const.
	Declare string
}

// Stats counts what Apply did.
type Stats struct {
	Inserted  int
	Updated   int
	Removed   int
	Fallbacks int
	// Created lists bindings that were added to the file.
	Created []string
}

// Changed reports whether any property was touched.
func (s Stats) Changed() bool {
	return s.Inserted+s.Updated+s.Removed > 0 || len(s.Created) > 0
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

type splice struct {
	start, end int
	text       string
	order      int
}

// Apply returns the source with every change applied. Only the bodies of
// touched object literals are regenerated; a binding that does not exist
// is declared after the last existing binding of the same change set, or
// at the end of the file.
func (f *File) Apply(changes []Change) ([]byte, Stats, error) {
	var stats Stats
	var splices []splice
	style := f.fileStyle()

	// Insertion point for bindings that have to be created.
	anchor := -1
	var sibling *Binding
	for _, c := range changes {
		if b := f.Binding(c.Binding); b != nil && b.Object != nil && b.StmtEnd > anchor {
			anchor, sibling = b.StmtEnd, b
		}
	}

	for n, c := range changes {
		if c.Ops.Empty() {
			continue
		}
		b := f.Binding(c.Binding)
		if b != nil && b.Object == nil {
			return nil, stats, &jsscan.SyntaxError{
				Offset: b.StmtStart,
				Line:   bytes.Count(f.Src[:b.StmtStart], []byte{'\n'}) + 1,
				Msg:    "binding " + b.Name + " is not initialized with an object literal",
			}
		}
		if b == nil {
			text := f.declare(c, sibling, style, &stats)
			if text == "" {
				continue
			}
			if anchor >= 0 {
				splices = append(splices, splice{start: anchor, end: anchor, text: "\n" + text, order: n})
			} else {
				splices = append(splices, splice{start: len(f.Src), end: len(f.Src), text: f.eofSeparator() + text + "\n", order: n})
			}
			stats.Created = append(stats.Created, c.Binding)
			continue
		}

		o := f.newObjectEdit(b, style)
		o.apply(c.Binding, c.Ops, &stats)
		if !o.dirty {
			continue
		}
		splices = append(splices, splice{start: b.Object.Open + 1, end: b.Object.Close, text: o.render(), order: n})
	}

	if len(splices) == 0 {
		return f.Src, stats, nil
	}
	sort.SliceStable(splices, func(i, j int) bool {
		if splices[i].start != splices[j].start {
			return splices[i].start < splices[j].start
		}
		return splices[i].order < splices[j].order
	})
	var out bytes.Buffer
	pos := 0
	for _, s := range splices {
		out.Write(f.Src[pos:s.start])
		out.WriteString(s.text)
		pos = s.end
	}
	out.Write(f.Src[pos:])
	return out.Bytes(), stats, nil
}

// NewSource returns the text of a new locale module holding one binding.
func NewSource(c Change) []byte {
	f := &File{}
	out, _, _ := f.Apply([]Change{c})
	return out
}

func (f *File) eofSeparator() string {
	if len(f.Src) == 0 || bytes.HasSuffix(f.Src, []byte("\n\n")) {
		return ""
	}
	if bytes.HasSuffix(f.Src, []byte("\n")) {
		return "\n"
	}
	return "\n\n"
}

// declare renders a new declaration for a missing binding.
func (f *File) declare(c Change, sibling *Binding, st objStyle, stats *Stats) string {
	o := &objectEdit{style: st, empty: true, tail: "", base: "", creating: true}
	o.apply(c.Binding, c.Ops, stats)
	if len(o.segs) == 0 {
		return ""
	}

	declare, prefix, annot := c.Declare, "", ""
	if declare == "" {
		declare = "const"
	}
	if sibling != nil {
		declare, prefix, annot = sibling.Declare, sibling.Prefix, sibling.Annot
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(declare)
	b.WriteByte(' ')
	b.WriteString(c.Binding)
	if annot != "" {
		b.WriteString(annot)
	}
	b.WriteString(" = {")
	b.WriteString(o.render())
	b.WriteString("};")
	return b.String()
}

// ---------------------------------------------------------------------------
// Object body regeneration
// ---------------------------------------------------------------------------

// segment is one property together with the text around it. Rendering the
// segments in order with their commas reproduces the original body.
type segment struct {
	lead  string
	core  string
	mid   string
	after string
	comma bool

	key      string
	keyed    bool
	keyPart  string
	valQuote byte
}

type objStyle struct {
	indent string
	quote  byte
	sep    string
}

type objectEdit struct {
	segs      []segment
	tail      string
	lastComma bool
	empty     bool
	base      string
	style     objStyle
	dirty     bool
	// creating is set for the body of a binding being declared; every
	// edit is then an insert.
	creating bool
}

// fileStyle picks defaults from the first object literal with properties.
func (f *File) fileStyle() objStyle {
	st := objStyle{indent: "  ", quote: '"', sep: ": "}
	for _, b := range f.Bindings {
		if b.Object == nil || len(b.Object.Props) == 0 {
			continue
		}
		o := f.newObjectEdit(b, st)
		return o.style
	}
	return st
}

func (f *File) newObjectEdit(b *Binding, fallback objStyle) *objectEdit {
	src := f.Src
	obj := b.Object
	o := &objectEdit{style: fallback, base: lineIndent(src, obj.Open)}

	pos := obj.Open + 1
	foundQuote := false
	for i, p := range obj.Props {
		limit := obj.Close
		if i+1 < len(obj.Props) {
			limit = obj.Props[i+1].Start
		}
		s := segment{
			lead:  string(src[pos:p.Start]),
			core:  string(src[p.Start:p.End]),
			key:   p.Key,
			keyed: p.Keyed,
		}
		end := p.End
		if p.Comma >= 0 {
			s.mid = string(src[p.End:p.Comma])
			s.comma = true
			end = p.Comma + 1
		}
		segEnd := lineRest(src, end, limit)
		s.after = string(src[end:segEnd])
		if p.Keyed {
			s.keyPart = string(src[p.Start:p.ValStart])
			if p.IsString {
				s.valQuote = p.ValueQuote
				if !foundQuote {
					o.style.quote = p.ValueQuote
					o.style.sep = string(src[p.KeyEnd:p.ValStart])
					foundQuote = true
				}
			}
		}
		o.segs = append(o.segs, s)
		pos = segEnd
	}
	o.tail = string(src[pos:obj.Close])
	o.empty = len(o.segs) == 0
	if n := len(o.segs); n > 0 {
		o.lastComma = o.segs[n-1].comma
		o.style.indent = o.segIndent(fallback.indent)
	} else {
		o.style.indent = o.base + fallback.indent
	}
	return o
}

// segIndent derives the indentation of properties from the last one.
func (o *objectEdit) segIndent(unit string) string {
	last := o.segs[len(o.segs)-1]
	line := last.lead
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	} else if len(o.segs) == 1 && !strings.Contains(o.tail, "\n") {
		return o.base + unit
	}
	return leadingSpace(line)
}

// lineRest returns the end of the text that belongs to the property ending
// at from: through the line break when only blanks and same-line comments
// follow, otherwise from itself.
func lineRest(src []byte, from, limit int) int {
	i := from
	for i < limit {
		switch c := src[i]; {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '\n':
			return i + 1
		case c == '/' && i+1 < limit && src[i+1] == '/':
			nl := bytes.IndexByte(src[i:limit], '\n')
			if nl < 0 {
				return from
			}
			return i + nl + 1
		case c == '/' && i+1 < limit && src[i+1] == '*':
			end := bytes.Index(src[i+2:limit], []byte("*/"))
			if end < 0 || bytes.IndexByte(src[i:i+2+end], '\n') >= 0 {
				return from
			}
			i += 2 + end + 2
		default:
			return from
		}
	}
	return from
}

func lineIndent(src []byte, offset int) string {
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	return leadingSpace(string(src[start:offset]))
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func (o *objectEdit) apply(binding string, ops Ops, stats *Stats) {
	for _, kv := range ops.Push {
		if o.set(kv) {
			stats.Updated++
		} else {
			o.insert(kv)
			stats.Inserted++
		}
	}
	for _, kv := range ops.Edit {
		if o.set(kv) {
			stats.Updated++
			continue
		}
		o.insert(kv)
		stats.Inserted++
		if !o.creating {
			log.Warn().Str("binding", binding).Str("key", kv.Key).Msg("edited key no longer in file, inserting it")
			stats.Fallbacks++
		}
	}
	for _, key := range ops.Delete {
		stats.Removed += o.remove(key)
	}
}

// set replaces the value of every property named kv.Key and reports
// whether there was one.
func (o *objectEdit) set(kv table.KV) bool {
	found := false
	for i := range o.segs {
		s := &o.segs[i]
		if !s.keyed || s.key != kv.Key {
			continue
		}
		found = true
		q := s.valQuote
		if q == 0 {
			q = o.style.quote
		}
		core := s.keyPart + jsscan.Quote(kv.Value, q)
		if core != s.core {
			s.core = core
			s.valQuote = q
			o.dirty = true
		}
	}
	return found
}

func (o *objectEdit) insert(kv table.KV) {
	q := o.style.quote
	s := segment{
		core:     jsscan.Quote(kv.Key, q) + o.style.sep + jsscan.Quote(kv.Value, q),
		key:      kv.Key,
		keyed:    true,
		keyPart:  jsscan.Quote(kv.Key, q) + o.style.sep,
		valQuote: q,
	}
	switch {
	case o.empty:
		s.lead, s.after = o.style.indent, "\n"
	case o.multiline():
		last := o.segs[len(o.segs)-1]
		if strings.HasSuffix(last.after, "\n") {
			s.lead, s.after = o.style.indent, "\n"
		} else {
			s.lead = "\n" + o.style.indent
		}
	default:
		s.lead = " "
		if last := o.segs[len(o.segs)-1]; strings.TrimSpace(last.lead) == "" {
			s.lead = last.lead
		}
	}
	o.segs = append(o.segs, s)
	o.dirty = true
}

func (o *objectEdit) multiline() bool {
	if strings.Contains(o.tail, "\n") {
		return true
	}
	for _, s := range o.segs {
		if strings.Contains(s.lead, "\n") || strings.HasSuffix(s.after, "\n") {
			return true
		}
	}
	return false
}

// remove deletes every property named key. Comments written before a
// removed property stay in place, and the line break that ended it is kept
// when it was the last property on its line.
func (o *objectEdit) remove(key string) int {
	n := 0
	for i := 0; i < len(o.segs); {
		s := o.segs[i]
		if !s.keyed || s.key != key {
			i++
			continue
		}
		keep, rest := "", s.lead
		if j := strings.LastIndexByte(s.lead, '\n'); j >= 0 {
			keep, rest = s.lead[:j+1], s.lead[j+1:]
		}
		if strings.TrimSpace(rest) != "" {
			keep += strings.TrimRight(rest, " \t")
		}
		brk := lineBreak(s.after)

		o.segs = append(o.segs[:i], o.segs[i+1:]...)
		switch {
		case i < len(o.segs) && brk == "":
			// The next property shared the line and takes over its place.
			o.segs[i].lead = s.lead
		case i < len(o.segs):
			if keep != "" && !strings.HasSuffix(keep, "\n") {
				keep += brk
			}
			o.segs[i].lead = keep + o.segs[i].lead
		default:
			before := keep
			if before == "" && i > 0 {
				before = o.segs[i-1].after
			}
			if brk != "" && !strings.HasSuffix(before, "\n") {
				keep += brk
			}
			o.tail = keep + o.tail
		}
		n++
		o.dirty = true
	}
	return n
}

// lineBreak returns the line break s ends with, or "".
func lineBreak(s string) string {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(s, "\n"):
		return "\n"
	}
	return ""
}

func (o *objectEdit) render() string {
	var b strings.Builder
	closing := o.tail
	if o.empty && len(o.segs) > 0 {
		head := "\n"
		closing = o.base
		if i := strings.LastIndexByte(o.tail, '\n'); i >= 0 {
			head, closing = o.tail[:i+1], o.tail[i+1:]
		}
		b.WriteString(head)
	}
	for i, s := range o.segs {
		b.WriteString(s.lead)
		b.WriteString(s.core)
		b.WriteString(s.mid)
		if i < len(o.segs)-1 || o.lastComma {
			b.WriteByte(',')
		}
		b.WriteString(s.after)
	}
	b.WriteString(closing)
	return b.String()
}
