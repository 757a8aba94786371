package place

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSchemas_CoverEveryCategory(t *testing.T) {
	s := DefaultSchemas()
	for _, c := range All() {
		sc, ok := s[c]
		if !ok {
			t.Fatalf("no schema for %s", c)
		}
		if len(sc.NameKeys) == 0 || len(sc.Fields) == 0 {
			t.Errorf("schema for %s is incomplete: %+v", c, sc)
		}
	}
}

func TestLoadSchemas(t *testing.T) {
	doc := `
rivers:
  fields:
    - label: River
      keys: [river_name, name]
    - label: Discharge
      keys: [discharge_m3s]
`
	s, err := LoadSchemas(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSchemas() error = %v", err)
	}

	r := NewResolver(s, nil)
	rows := r.BuildDetailRows(Rivers, Properties{"river_name": "Indus", "discharge_m3s": 6600.0}, nil)
	if len(rows) != 2 || rows[0].Value != "Indus" || rows[1].Label != "Discharge" {
		t.Errorf("rows = %v", rows)
	}
	if got := r.ResolveName(Rivers, Properties{"NAME": "Indus"}); got != "Indus" {
		t.Errorf("name keys should fall back to defaults, got %q", got)
	}
	if len(s[Countries].Fields) != len(DefaultSchemas()[Countries].Fields) {
		t.Error("untouched categories should keep their defaults")
	}
}

func TestLoadSchemas_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown category":   "lakes:\n  fields: []\n",
		"field without keys": "rivers:\n  fields:\n    - label: River\n",
		"not yaml":           "rivers: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadSchemas(strings.NewReader(doc)); err == nil {
				t.Error("LoadSchemas() should fail")
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := Parse(" Rivers ")
	if err != nil || c != Rivers {
		t.Errorf("Parse() = %q, %v", c, err)
	}
	if _, err := Parse("lakes"); err == nil {
		t.Error("Parse(lakes) should fail")
	}
	if Cities.Singular() != "city" || Rivers.Title() != "Rivers" {
		t.Error("unexpected category names")
	}
}

func TestLoadSchemaFile(t *testing.T) {
	s, err := LoadSchemaFile("")
	if err != nil || len(s) != len(DefaultSchemas()) {
		t.Fatalf("empty path: len = %d, err = %v", len(s), err)
	}

	path := filepath.Join(t.TempDir(), "fields.yaml")
	if err := os.WriteFile(path, []byte("mountains:\n  fields:\n    - label: Range\n      keys: [range]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = LoadSchemaFile(path)
	if err != nil {
		t.Fatalf("LoadSchemaFile() error = %v", err)
	}
	if f := s[Mountains].Fields; len(f) != 1 || f[0].Label != "Range" {
		t.Errorf("mountain fields = %v", f)
	}

	if _, err := LoadSchemaFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
