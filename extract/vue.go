package extract

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// sfcBlock is a top-level block of a Vue single-file component.
type sfcBlock struct {
	tag        string
	setup      bool
	start, end int // content offsets
}

// splitSFC locates the top-level <template>, <script> and <style> blocks.
// Nested <template> elements inside the markup are part of the outer block.
func splitSFC(src []byte) ([]sfcBlock, error) {
	z := html.NewTokenizer(bytes.NewReader(src))
	var blocks []sfcBlock
	var cur sfcBlock
	depth := 0
	offset := 0
	for {
		tt := z.Next()
		start := offset
		offset += len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				if depth > 0 {
					return nil, fmt.Errorf("unclosed <%s> block", cur.tag)
				}
				return blocks, nil
			}
			return nil, z.Err()
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if depth == 0 {
				if tag != "template" && tag != "script" && tag != "style" {
					continue
				}
				cur = sfcBlock{tag: tag, start: offset}
				for hasAttr {
					var key []byte
					key, _, hasAttr = z.TagAttr()
					if string(key) == "setup" {
						cur.setup = true
					}
				}
				depth = 1
				continue
			}
			if tag == cur.tag {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if depth > 0 && string(name) == cur.tag {
				depth--
				if depth == 0 {
					cur.end = start
					blocks = append(blocks, cur)
				}
			}
		}
	}
}

// scanVue extracts usages from the markup and every script block of a
// single-file component.
func scanVue(src []byte, names []string) ([]located, error) {
	blocks, err := splitSFC(src)
	if err != nil {
		return nil, err
	}
	var found []located
	for _, b := range blocks {
		switch b.tag {
		case "template":
			got, err := scanMarkup(src, b.start, b.end, names)
			if err != nil {
				return nil, err
			}
			found = append(found, got...)
		case "script":
			got, err := scanScript(src[b.start:b.end], b.start, lineAt(src, b.start), names, false)
			if err != nil {
				what := "<script>"
				if b.setup {
					what = "<script setup>"
				}
				return nil, fmt.Errorf("%s: %v", what, err)
			}
			found = append(found, got...)
		}
	}
	return found, nil
}
