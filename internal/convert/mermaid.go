// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package convert

import (
	"regexp"
	"strings"
)

var (
	styleStmtRegex = regexp.MustCompile(`style\s+(\S+)\s+([^,\n]+),?`)

	smartQuotes = strings.NewReplacer(
		"“", `"`, // left double quotation mark
		"”", `"`, // right double quotation mark
		"‘", "'", // left single quotation mark
		"’", "'", // right single quotation mark
	)
)

// FormatMermaid prepares raw Mermaid diagram source for client-side
// rendering: trims surrounding whitespace, normalizes smart quotes that
// rich text editors introduce, tidies style directive spacing and wraps
// the result in the container the mermaid.js loader picks up. The diagram
// source is left unescaped so the renderer receives it verbatim.
func FormatMermaid(src string) string {
	code := strings.TrimSpace(src)
	code = smartQuotes.Replace(code)
	code = styleStmtRegex.ReplaceAllString(code, "style $1 $2")
	return `<div class="mermaid">` + code + "</div>"
}
