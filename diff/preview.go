package diff

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/minios-linux/i18nsync/table"
)

// MergePatch renders the change of one locale column as an RFC 7386 JSON
// merge patch: changed and added keys carry their new value, deleted keys
// are null. An unchanged column yields "{}".
func MergePatch(snapshot, current *table.Table, loc table.LocaleID) ([]byte, error) {
	before, err := marshalColumn(snapshot, loc)
	if err != nil {
		return nil, err
	}
	after, err := marshalColumn(current, loc)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, fmt.Errorf("creating %s merge patch: %w", loc, err)
	}
	return patch, nil
}

// ApplyMergePatch applies a patch produced by MergePatch to the column of
// base and returns the resulting key/value mapping.
func ApplyMergePatch(base *table.Table, loc table.LocaleID, patch []byte) (map[string]string, error) {
	doc, err := marshalColumn(base, loc)
	if err != nil {
		return nil, err
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("applying %s merge patch: %w", loc, err)
	}
	out := make(map[string]string)
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("decoding %s column: %w", loc, err)
	}
	return out, nil
}

func marshalColumn(t *table.Table, loc table.LocaleID) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t.Column(loc)); err != nil {
		return nil, fmt.Errorf("encoding %s column: %w", loc, err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
