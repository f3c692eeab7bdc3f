package refdata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestList_ContainsIgnoresCase(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name string
		want bool
	}{
		{"Paracetamol", true},
		{"paracetamol", true},
		{"PARACETAMOL", true},
		{"  Ibuprofen  ", true},
		{"Quinine", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := reg.Drugs.Contains(tc.name); got != tc.want {
			t.Errorf("Contains(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestList_Canonical(t *testing.T) {
	reg := NewRegistry()
	canonical, ok := reg.Drugs.Canonical("metFORMIN")
	if !ok {
		t.Fatal("expected metformin to be known")
	}
	if canonical != "Metformin" {
		t.Errorf("expected canonical spelling Metformin, got %q", canonical)
	}
}

func TestList_SearchLimit(t *testing.T) {
	reg := NewRegistry()

	all := reg.Drugs.Search("", 0)
	if len(all) != DefaultSearchLimit {
		t.Errorf("expected %d results for empty query, got %d", DefaultSearchLimit, len(all))
	}

	matches := reg.Drugs.Search("ol", 3)
	if len(matches) > 3 {
		t.Errorf("expected at most 3 results, got %d", len(matches))
	}
	for _, m := range matches {
		if !reg.Drugs.Contains(m) {
			t.Errorf("search returned unknown name %q", m)
		}
	}
}

func TestList_SearchSubstring(t *testing.T) {
	reg := NewRegistry()
	matches := reg.Specialities.Search("cardio", 0)
	if len(matches) != 1 || matches[0] != "Cardiologist" {
		t.Errorf("expected [Cardiologist], got %v", matches)
	}

	if got := reg.Drugs.Search("zzz", 0); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestNewList_Dedupes(t *testing.T) {
	l := NewList([]string{"Aspirin", "aspirin", " ASPIRIN ", "", "Ibuprofen"})
	if got := len(l.All()); got != 2 {
		t.Errorf("expected 2 names after dedupe, got %d: %v", got, l.All())
	}
}

func TestLoad_FromFiles(t *testing.T) {
	dir := t.TempDir()
	drugFile := filepath.Join(dir, "drugs.json")
	if err := os.WriteFile(drugFile, []byte(`["Aspirin","Warfarin"]`), 0644); err != nil {
		t.Fatalf("write drug file: %v", err)
	}

	reg, err := Load(drugFile, "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reg.Drugs.Contains("warfarin") {
		t.Error("expected loaded drug list to contain warfarin")
	}
	if reg.Drugs.Contains("Paracetamol") {
		t.Error("expected defaults to be replaced")
	}
	if !reg.Specialities.Contains("Cardiologist") {
		t.Error("expected default specialities to remain")
	}
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not":"a list"}`), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(bad, ""); err == nil {
		t.Error("expected error for malformed drug file")
	}
	if _, err := Load("", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing speciality file")
	}
}
