package section

import (
	"fmt"
	"os"
	"strings"

	"github.com/moby/sys/atomicwriter"
)

// Split breaks text into lines on "\n". A trailing newline yields a final
// empty line so that Join(Split(s)) == s.
func Split(text string) []string {
	return strings.Split(text, "\n")
}

// Join is the inverse of Split.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// ReadFile loads the document at path.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Split(string(data)), nil
}

// WriteFile replaces the document at path in a single atomic rename,
// keeping the existing file mode.
func WriteFile(path string, lines []string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := atomicwriter.WriteFile(path, []byte(Join(lines)), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
