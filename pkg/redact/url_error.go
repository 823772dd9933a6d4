// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact strips credentials from errors before they reach a log
// line. qBittorrent instances are sometimes reverse-proxied behind a URL
// carrying an API key or token in the query string; that key has no
// business ending up in a log file.
package redact

import (
	"errors"
	"net/url"
	"strings"
)

var sensitiveParams = []string{"apikey", "api_key", "token", "passkey", "password"}

const redactedValue = "REDACTED"

// URLError scrubs sensitive query parameters from any *url.Error found in
// err's chain. Non-url.Error errors, and nil, pass through unchanged.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	redactedURL := redactURL(urlErr.URL)
	if redactedURL == urlErr.URL {
		return err
	}

	if err == error(urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redactedURL, Err: urlErr.Err}
	}

	// err wraps urlErr (e.g. via fmt.Errorf("%w", ...)); splice the
	// redacted URL into the already-formatted message rather than
	// attempting to rebuild the wrap chain.
	return errors.New(strings.Replace(err.Error(), urlErr.URL, redactedURL, 1))
}

func redactURL(raw string) string {
	parsed, parseErr := url.Parse(raw)
	if parseErr != nil || parsed.RawQuery == "" {
		return raw
	}

	query := parsed.Query()
	changed := false
	for _, key := range sensitiveParams {
		if _, ok := query[key]; ok {
			query.Set(key, redactedValue)
			changed = true
		}
	}
	if !changed {
		return raw
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}
