// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package config

import (
	"fmt"
	"os"
	"strings"
)

const secretFilePrefix = "file:"

// resolveSecrets replaces file: references in secret fields with the
// referenced file contents.
func (c *Config) resolveSecrets() error {
	secrets := []struct {
		name  string
		value *string
	}{
		{"INFLUX_TOKEN", &c.Influx.Token},
		{"API_KEY", &c.Tiles.APIKey},
		{"MAP_ACCESS_TOKEN", &c.Tiles.AccessToken},
		{"JWT_SECRET", &c.Auth.Secret},
		{"ISSUER_PASSWORD", &c.Auth.IssuerPassword},
	}

	for _, s := range secrets {
		resolved, err := resolveSecretRef(*s.value)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		*s.value = resolved
	}
	return nil
}

// resolveSecretRef returns value unchanged unless it is a file reference.
// Both file:///abs/path and file:/abs/path forms are accepted.
func resolveSecretRef(value string) (string, error) {
	if !strings.HasPrefix(value, secretFilePrefix) {
		return value, nil
	}

	path := strings.TrimPrefix(value, secretFilePrefix)
	if strings.HasPrefix(path, "//") {
		path = strings.TrimPrefix(path, "//")
	}
	if path == "" {
		return "", fmt.Errorf("empty secret file reference")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return secret, nil
}
