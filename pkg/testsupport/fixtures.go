package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture reads a file under the calling package's testdata directory.
func LoadFixture(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join("testdata", filepath.Clean(name)))
}

// MustLoadFixture is LoadFixture for tests; a missing fixture fails t.
func MustLoadFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return data
}

// LoadJSONFixture decodes a testdata JSON file into v.
func LoadJSONFixture(name string, v any) error {
	data, err := LoadFixture(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}
