package store

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	in := record{ID: "abc123", Title: "First"}
	if err := s.Save("channel_abc123", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out record
	if !s.Load("channel_abc123", &out) {
		t.Fatal("Load() = false, want true")
	}
	if out != in {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}
}

func TestLoadMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out record
	if s.Load("nope", &out) {
		t.Error("Load() = true for missing key, want false")
	}
	if s.Has("nope") {
		t.Error("Has() = true for missing key, want false")
	}
}

func TestLoadCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out record
	if s.Load("bad", &out) {
		t.Error("Load() = true for corrupt blob, want false")
	}
	if err := s.MustLoad("bad", &out); err == nil {
		t.Error("MustLoad() error = nil for corrupt blob, want error")
	}
}

func TestSaveOverwrites(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save("k", record{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("k", record{ID: "2"}); err != nil {
		t.Fatal(err)
	}

	var out record
	if !s.Load("k", &out) {
		t.Fatal("Load() = false, want true")
	}
	if out.ID != "2" {
		t.Errorf("Load() ID = %q, want %q", out.ID, "2")
	}
}

func TestSubStore(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sub, err := s.Sub("subtitles")
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}

	if err := sub.Save("vid1", record{ID: "vid1"}); err != nil {
		t.Fatal(err)
	}
	if s.Has("vid1") {
		t.Error("parent store sees child key")
	}
	if !sub.Has("vid1") {
		t.Error("child store missing its own key")
	}
	if sub.Dir() != filepath.Join(s.Dir(), "subtitles") {
		t.Errorf("Sub() dir = %q, want nested under parent", sub.Dir())
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Save("k", record{ID: "1"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "k.json" {
			t.Errorf("unexpected file %q in store dir", e.Name())
		}
	}
}
