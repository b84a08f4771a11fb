package dialect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// pendingWrite is the planned new content of one file.
type pendingWrite struct {
	path    string
	data    []byte
	orig    []byte
	existed bool
	perm    os.FileMode
}

// renameFile is replaced in tests to simulate failing writes.
var renameFile = os.Rename

// commit writes every planned file. When a write fails, the files written
// before it are restored to their previous content, or removed if they
// did not exist.
func commit(writes []pendingWrite) error {
	for i, w := range writes {
		if err := writeFileAtomic(w.path, w.data, w.perm); err != nil {
			rollback(writes[:i])
			return fmt.Errorf("%w: %s: %v", ErrWrite, w.path, err)
		}
	}
	return nil
}

func rollback(done []pendingWrite) {
	for i := len(done) - 1; i >= 0; i-- {
		w := done[i]
		var err error
		if w.existed {
			err = writeFileAtomic(w.path, w.orig, w.perm)
		} else {
			err = os.Remove(w.path)
		}
		if err != nil {
			log.Error().Err(err).Str("file", w.path).Msg("could not restore file after failed save")
		}
	}
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, path)
}
