// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"os"
	"testing"
)

// WriteFunc adapts a function to [io.Writer].
type WriteFunc func(p []byte) (int, error)

func (f WriteFunc) Write(p []byte) (int, error) { return f(p) }

// FailingWriter returns a writer whose writes always fail.
func FailingWriter() io.Writer {
	return WriteFunc(func([]byte) (int, error) {
		return 0, errors.New("write failed")
	})
}

// FailAfter returns a writer that forwards n writes to target and fails
// every write after that.
func FailAfter(n int, target io.Writer) io.Writer {
	var written int
	return WriteFunc(func(p []byte) (int, error) {
		if written >= n {
			return 0, errors.New("write limit exceeded")
		}
		written++
		return target.Write(p)
	})
}

// Chdir switches the working directory for the rest of the test and restores
// the original when the test finishes.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}

// AssertFileExists fails the test when no file exists at path.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected a file at %s: %v", path, err)
	}
}

// ReadFile returns the contents of the file at path, failing the test on any
// read error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(content)
}
