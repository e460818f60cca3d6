package brewcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "sub", "available_versions.cache"))
}

func sample(fetchedAt time.Time) Snapshot {
	return Snapshot{
		FetchedAt: fetchedAt,
		Versions: []Entry{
			{ID: "7.4", Installed: false},
			{ID: "8.1", Installed: true},
			{ID: "default", Installed: true},
		},
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t)

	snap, state := s.Load()
	if state != Miss {
		t.Fatalf("state = %v, want Miss", state)
	}
	if len(snap.Versions) != 0 {
		t.Errorf("Versions = %v, want empty", snap.Versions)
	}
}

func TestSaveThenLoadFresh(t *testing.T) {
	s := tempStore(t)
	in := sample(time.Now())

	if err := s.Save(context.Background(), in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	snap, state := s.Load()
	if state != Fresh {
		t.Fatalf("state = %v, want Fresh", state)
	}
	if len(snap.Versions) != 3 {
		t.Fatalf("Versions = %v, want 3 entries", snap.Versions)
	}
	if snap.Versions[1].ID != "8.1" || !snap.Versions[1].Installed {
		t.Errorf("Versions[1] = %+v, want installed 8.1", snap.Versions[1])
	}
}

func TestLoadStaleAfterTTL(t *testing.T) {
	s := tempStore(t)
	in := sample(time.Now().Add(-2 * time.Hour))

	if err := s.Save(context.Background(), in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	snap, state := s.Load()
	if state != Stale {
		t.Fatalf("state = %v, want Stale", state)
	}
	// Stale snapshots keep their contents; the registry client decides
	// whether to use them.
	if len(snap.Versions) != 3 {
		t.Errorf("stale snapshot lost contents: %v", snap.Versions)
	}
	if snap.Age() < 2*time.Hour-time.Minute {
		t.Errorf("Age() = %v, want about 2h", snap.Age())
	}
}

func TestLoadCorruptFileIsMissAndRemoved(t *testing.T) {
	s := tempStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not toml at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, state := s.Load()
	if state != Miss {
		t.Fatalf("state = %v, want Miss", state)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("corrupt snapshot file was not removed")
	}
}

func TestLoadZeroTimestampIsMiss(t *testing.T) {
	s := tempStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	// Valid TOML, but no fetched_at field.
	if err := os.WriteFile(s.Path(), []byte("[[versions]]\nid = \"8.1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, state := s.Load(); state != Miss {
		t.Fatalf("state = %v, want Miss", state)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sample(time.Now().Add(-3*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, Snapshot{FetchedAt: time.Now(), Versions: []Entry{{ID: "8.3"}}}); err != nil {
		t.Fatal(err)
	}

	snap, state := s.Load()
	if state != Fresh {
		t.Fatalf("state = %v, want Fresh", state)
	}
	if len(snap.Versions) != 1 || snap.Versions[0].ID != "8.3" {
		t.Errorf("Versions = %v, want just 8.3", snap.Versions)
	}
}

func TestClear(t *testing.T) {
	s := tempStore(t)

	// Clearing a missing file is fine.
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() on missing file: %v", err)
	}

	if err := s.Save(context.Background(), sample(time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, state := s.Load(); state != Miss {
		t.Error("snapshot still loadable after Clear")
	}
}
