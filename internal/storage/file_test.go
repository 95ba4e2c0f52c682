package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/desertthunder/spr/internal/shared"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a path", func(t *testing.T) {
		if _, err := NewFileStore(""); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load before first save is not found", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save and load round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		store, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		rec := &Record{AccessToken: "BQD_a", RefreshToken: "AQC_r", ExpiresAt: 1735689600}
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load record: %v", err)
		}
		if got.AccessToken != rec.AccessToken || got.RefreshToken != rec.RefreshToken {
			t.Errorf("expected %+v, got %+v", rec, got)
		}

		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("failed to stat record file: %v", err)
			}
			if info.Mode().Perm() != 0600 {
				t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
			}
		}
	})

	t.Run("overwrite wins", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "token.json"))
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		if err := store.Save(ctx, &Record{AccessToken: "first"}); err != nil {
			t.Fatalf("failed to save first record: %v", err)
		}
		if err := store.Save(ctx, &Record{AccessToken: "second"}); err != nil {
			t.Fatalf("failed to save second record: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load record: %v", err)
		}
		if got.AccessToken != "second" {
			t.Errorf("expected second write to win, got %s", got.AccessToken)
		}
	})

	t.Run("malformed file fails as storage error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		store, err := NewFileStore(path)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		if _, err := store.Load(ctx); !errors.Is(err, shared.ErrStorageFailed) {
			t.Errorf("expected ErrStorageFailed, got %v", err)
		}
	})

	t.Run("memory store mirrors the contract", func(t *testing.T) {
		store := NewMemoryStore()

		if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		rec := &Record{AccessToken: "a"}
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("failed to save record: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load record: %v", err)
		}

		got.AccessToken = "mutated"
		again, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("failed to reload record: %v", err)
		}
		if again.AccessToken != "a" {
			t.Error("expected loads to return independent copies")
		}
	})
}
