package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where an API token may come from.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline token provided via configuration or flags.
	Value string
	// File points to a file containing the token. It wins over Value.
	File string
	// Env names an environment variable consulted when neither File nor Value is set.
	Env string
	// Optional makes an unconfigured source resolve to an empty token instead of an error.
	Optional bool
}

// Load resolves the token from src. Precedence is File, Value, then Env.
// The result is always trimmed.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if src.Optional {
		return "", nil
	}

	return "", fmt.Errorf("%s is not configured", name)
}
