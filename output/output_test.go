package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/use-agent/serpscout/models"
)

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	rs := models.NewResultSet("villa goa", "https://listings.test/goa", []models.ExtractedItem{
		{Title: "Sea view villa", Price: "₹ 4 Cr", Link: "https://listings.test/v/1?a=1&b=2"},
	})

	if err := WriteJSON(path, rs); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)

	order := []string{`"searchText"`, `"sourcePage"`, `"totalItems": 1`, `"items"`, `"title"`, `"price"`, `"link"`}
	last := -1
	for _, key := range order {
		i := strings.Index(got, key)
		if i <= last {
			t.Fatalf("%s out of order in:\n%s", key, got)
		}
		last = i
	}
	if !strings.Contains(got, "₹ 4 Cr") || !strings.Contains(got, "a=1&b=2") {
		t.Errorf("text was escaped:\n%s", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWriteJSON_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(path, models.NewResultSet("q", "", nil)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"items": []`) {
		t.Errorf("file = %s", data)
	}
}

func TestWriteJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := WriteJSON(filepath.Join(dir, "x.json"), nil); err == nil {
		t.Error("nil result set accepted")
	}
	if err := WriteJSON(filepath.Join(dir, "missing", "x.json"), models.NewResultSet("q", "", nil)); err == nil {
		t.Error("write into a missing directory succeeded")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files left behind: %v", entries)
	}
}
