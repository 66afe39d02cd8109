package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStampTracksDeclarationFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.json"), "{}")
	missing := filepath.Join(dir, "later.yaml")

	stamp := func() string {
		t.Helper()
		d, err := Stamp([]string{dir, missing})
		if err != nil {
			t.Fatalf("Stamp: %v", err)
		}
		return d.String()
	}

	first := stamp()
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".git", "HEAD.json"), "{}")
	if stamp() != first {
		t.Fatalf("unrelated files changed the stamp")
	}

	writeFile(t, filepath.Join(dir, "base.json"), `{"rules": {}}`)
	second := stamp()
	if second == first {
		t.Fatalf("editing a preset did not change the stamp")
	}

	writeFile(t, missing, "rules: {}\n")
	if stamp() == second {
		t.Fatalf("creating a watched file did not change the stamp")
	}
}

func TestWatchCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.json")
	writeFile(t, path, "{}")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := 0
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir}, 5*time.Millisecond, func() error {
			changes++
			cancel()
			return nil
		})
	}()

	// Keep growing the file until the watcher notices.
	content := "{}"
	for {
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("Watch returned %v, want context.Canceled", err)
			}
			if changes != 1 {
				t.Fatalf("onChange called %d times, want 1", changes)
			}
			return
		case <-time.After(10 * time.Millisecond):
			content += " "
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
	}
}

func TestWatchStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.json")
	writeFile(t, path, "{}")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{path}, 5*time.Millisecond, func() error { return boom })
	}()

	content := "{}"
	for {
		select {
		case err := <-done:
			if !errors.Is(err, boom) {
				t.Fatalf("Watch returned %v, want boom", err)
			}
			return
		case <-time.After(10 * time.Millisecond):
			content += " "
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
	}
}
