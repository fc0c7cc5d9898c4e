// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package upstream

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of an upstream error body is buffered.
const maxErrorBody = 64 << 10

// StatusError is an upstream non-2xx response, buffered so it can be
// relayed or logged after the connection is released.
type StatusError struct {
	Status      int
	ContentType string
	Body        []byte
}

// Error matches the message format browser clients already parse.
func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.Status)
}

// NewStatusError drains and closes resp.Body into a StatusError.
func NewStatusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
