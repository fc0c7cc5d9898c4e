// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package logging

import "strings"

// secretQueryParams are query parameters whose values are masked by RedactURL.
var secretQueryParams = []string{"access_token", "token", "api_key", "apikey"}

// MaskSecret masks a secret, keeping the first and last 4 characters.
// Short values are replaced entirely.
//
//	MaskSecret("pk.eyJ1IjoiaW5mbHV4ZGF0YSJ9.abcd") -> "pk.e...abcd"
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// RedactURL masks credential query parameters in raw. Tile template
// placeholders such as {z} and the parameter order are preserved, which
// net/url would escape and sort.
func RedactURL(raw string) string {
	base, query, found := strings.Cut(raw, "?")
	if !found || query == "" {
		return raw
	}

	parts := strings.Split(query, "&")
	for i, p := range parts {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		for _, secret := range secretQueryParams {
			if strings.EqualFold(key, secret) {
				parts[i] = key + "=" + MaskSecret(value)
				break
			}
		}
	}
	return base + "?" + strings.Join(parts, "&")
}
