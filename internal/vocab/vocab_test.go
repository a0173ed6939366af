package vocab

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/matcher"
	"corralon_backend/internal/textnorm"
)

func TestDefaultVocabularyParses(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Matcher.Thresholds.StrongAccept != 0.75 {
		t.Errorf("expected strong accept 0.75, got %v", v.Matcher.Thresholds.StrongAccept)
	}
	if v.Units["bolsita"] != 0.15 {
		t.Errorf("expected bolsita estimate 0.15, got %v", v.Units["bolsita"])
	}
	if len(v.Matcher.Glossary) < 15 {
		t.Errorf("expected a populated glossary, got %d entries", len(v.Matcher.Glossary))
	}
	if v.Replies.Help == "" || v.Replies.Payment == "" {
		t.Errorf("expected replies to be populated")
	}
}

func TestDefaultLexiconRewritesShorthand(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	norm := textnorm.New(v.Lexicon, nil)

	tests := []struct {
		in   string
		want string
	}{
		{"2 palets del 12", "2 pallet ladrillo del 12"},
		{"10 varillas del 8", "10 hierro del 8"},
		{"simento portland", "cemento"},
		{"3 bolsas de cal", "3 bolsita de cal"},
		{"fierros del 10", "hierro del 10"},
	}
	for _, tt := range tests {
		if got := norm.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultVocabularyDrivesMatcher(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := matcher.New(v.Matcher, textnorm.New(v.Lexicon, nil))
	snap := catalog.NewSnapshot([]catalog.Item{
		{ID: "a1", Title: "Arena Bolsón x 1m3", Variants: []catalog.Variant{{ID: "a1v", Title: "Default Title"}}},
		{ID: "a2", Title: "Arena Bolsita", Variants: []catalog.Variant{{ID: "a2v", Title: "Default Title"}}},
		{ID: "h8", Title: "Hierro Nervado 8mm", Variants: []catalog.Variant{{ID: "h8v", Title: "Default Title"}}},
		{ID: "h12", Title: "Hierro Nervado 12mm", Variants: []catalog.Variant{{ID: "h12v", Title: "Default Title"}}},
	}, timeZero())

	if acc, ok := m.Match("arena", snap, 1).(matcher.Accepted); !ok || acc.Item.ID != "a1" {
		t.Fatalf("expected default arena, got %#v", m.Match("arena", snap, 1))
	}
	if acc, ok := m.Match("varillas del 8", snap, 1).(matcher.Accepted); !ok || acc.Item.ID != "h8" {
		t.Fatalf("expected hierro 8, got %#v", m.Match("varillas del 8", snap, 1))
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	doc := []byte("version: 1\nmatcher:\n  thresholds:\n    strongAccept: 0.8\nunits:\n  balde: 0.02\n")
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Matcher.Thresholds.StrongAccept != 0.8 {
		t.Errorf("expected overridden threshold, got %v", v.Matcher.Thresholds.StrongAccept)
	}
	if v.Matcher.Thresholds.TieEpsilon != 0.05 {
		t.Errorf("expected untouched threshold to keep default, got %v", v.Matcher.Thresholds.TieEpsilon)
	}
	if v.Units["balde"] != 0.02 || v.Units["granel"] != 6 {
		t.Errorf("expected merged units, got %v", v.Units)
	}
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"version":   "version: 2\n",
		"threshold": "version: 1\nmatcher:\n  thresholds:\n    fallbackFloor: 1.5\n",
		"unit":      "version: 1\nunits:\n  balde: 0\n",
		"unit-word": "version: 1\nunits:\n  carretilla: 0.05\n",
	}
	for name, doc := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRenderAndReserved(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Render("{business}: {cash}% / {transfer}%", "Corralón", 0.10, 0.05)
	if got != "Corralón: 10% / 5%" {
		t.Fatalf("unexpected render %q", got)
	}
	if !v.IsReserved("CONFIRMAR") || v.IsReserved("arena") {
		t.Fatalf("unexpected reserved word classification")
	}
}

func timeZero() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}
