// Package secrets resolves API keys from files or inline configuration.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where an API key may come from.
type Source struct {
	// Name appears in error messages, e.g. "gemini api key".
	Name string
	// Value is an inline key from config or environment.
	Value string
	// File holds the key on its first line. It wins over Value.
	File string
	// Required turns a missing key into an error. Local backends leave it unset.
	Required bool
}

// Configured reports whether src points at any key at all.
func (src Source) Configured() bool {
	return strings.TrimSpace(src.File) != "" || strings.TrimSpace(src.Value) != ""
}

// Load returns the trimmed key. An unconfigured optional source yields "".
// A configured file that cannot be read or is blank is always an error.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "api key"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		key, _, _ := strings.Cut(string(data), "\n")
		if key = strings.TrimSpace(key); key == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return key, nil
	}

	key := strings.TrimSpace(src.Value)
	if key == "" && src.Required {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return key, nil
}
