// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidID is returned when a raw value cannot be resolved to a
// canonical 32-character hex Notion ID.
var ErrInvalidID = errors.New("invalid notion id")

var (
	canonicalIDRegex = regexp.MustCompile(`^[a-f0-9]{32}$`)
	// trailing 32-hex run, as found at the end of shared page URLs
	trailingIDRegex = regexp.MustCompile(`([a-f0-9]{32})(?:\?|$)`)
	// dash-delimited UUID shape anywhere in the string
	uuidShapeRegex = regexp.MustCompile(`([a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})`)
)

// NormalizeID canonicalizes the many shapes a Notion ID arrives in
// (hyphenated UUID, bare 32-hex, full page URL, URL with slug) into the
// 32-character lowercase hex form the API expects. Normalizing an already
// canonical ID returns it unchanged.
func NormalizeID(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, id)

	if canonicalIDRegex.MatchString(id) {
		return id, nil
	}

	// Copied URLs sometimes carry a stray 'f' prefix not present in the API
	// ID. Checked after the canonical match so a valid ID that happens to
	// start with 'f' is never mangled.
	id = strings.TrimLeft(id, "f")

	if canonicalIDRegex.MatchString(id) {
		return id, nil
	}

	// URL-embedded ID: a trailing 32-hex run after the page slug
	if m := trailingIDRegex.FindStringSubmatch(id); m != nil {
		return m[1], nil
	}

	// UUID-shaped substring in the original input (dashes intact)
	if m := uuidShapeRegex.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		return strings.ReplaceAll(m[1], "-", ""), nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
}
