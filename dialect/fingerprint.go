package dialect

import (
	"crypto/md5"
	"fmt"
	"os"
	"sort"

	"github.com/minios-linux/i18nsync/table"
)

// Fingerprints maps a locale file path to the MD5 of its content. A file
// that does not exist has an empty fingerprint.
type Fingerprints map[string]string

// Fingerprint records the current content hashes of the table files.
func Fingerprint(paths map[table.LocaleID]string) Fingerprints {
	fp := make(Fingerprints)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := fp[p]; ok {
			continue
		}
		fp[p] = fileHash(p)
	}
	return fp
}

// Changed returns the files whose content differs from when fp was taken,
// sorted.
func (fp Fingerprints) Changed() []string {
	var changed []string
	for p, sum := range fp {
		if fileHash(p) != sum {
			changed = append(changed, p)
		}
	}
	sort.Strings(changed)
	return changed
}

func fileHash(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", md5.Sum(data))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
