// Package secrets resolves provider credentials, primarily the Gemini API
// key, from either the configuration itself or a file the configuration
// points at.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a credential may come from.
type Source struct {
	// Name labels the credential in error messages ("gemini api key").
	Name string
	// Value is an inline credential from configuration or flags.
	Value string
	// File is a path to a file holding the credential. A set File takes
	// precedence over Value, so a key file can override a committed config.
	File string
}

// Load resolves the credential from the source and returns it trimmed. An
// error names the credential when neither File nor Value yields a usable
// value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		if secret := strings.TrimSpace(string(data)); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	return "", fmt.Errorf("%s is not configured", name)
}
