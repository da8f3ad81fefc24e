// Package output persists result sets.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/use-agent/serpscout/models"
)

// Encode writes rs to w as indented JSON. Key order follows the struct
// field order: searchText, sourcePage, totalItems, items.
func Encode(w io.Writer, rs *models.ResultSet) error {
	if rs == nil {
		return errors.New("output: nil result set")
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

// WriteJSON writes rs to path. The file is written to a temporary sibling
// and renamed into place, so readers never see a partial document and a
// failed run leaves any previous file untouched.
func WriteJSON(path string, rs *models.ResultSet) (err error) {
	if rs == nil {
		return errors.New("output: nil result set")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("output: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, rs); err != nil {
		return fmt.Errorf("output: encode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("output: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("output: close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("output: rename: %w", err)
	}
	return nil
}
