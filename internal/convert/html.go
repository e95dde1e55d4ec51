// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package convert renders Notion block trees into semantic HTML. The
// conversion is pure: no I/O, depth-first, document order.
package convert

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/olegiv/notionsync-go/internal/notion"
)

// Render converts a sequence of blocks into HTML, concatenating each
// block's rendering in document order. Unrecognized block types render
// as an empty string.
func Render(blocks []notion.Block) string {
	var sb strings.Builder
	for i := range blocks {
		sb.WriteString(renderBlock(&blocks[i]))
	}
	return sb.String()
}

func renderBlock(b *notion.Block) string {
	var out string

	switch b.Type {
	case notion.BlockTypeParagraph:
		out = "<p>" + RenderRichText(richText(b.Paragraph)) + "</p>"
	case notion.BlockTypeHeading1:
		out = "<h1>" + RenderRichText(richText(b.Heading1)) + "</h1>"
	case notion.BlockTypeHeading2:
		out = "<h2>" + RenderRichText(richText(b.Heading2)) + "</h2>"
	case notion.BlockTypeHeading3:
		out = "<h3>" + RenderRichText(richText(b.Heading3)) + "</h3>"
	case notion.BlockTypeBulletedListItem:
		// Each item is wrapped in its own list element; consecutive items
		// are not merged. Kept for output compatibility with existing
		// synced content.
		out = "<ul><li>" + RenderRichText(richText(b.BulletedListItem)) + "</li></ul>"
	case notion.BlockTypeNumberedListItem:
		out = "<ol><li>" + RenderRichText(richText(b.NumberedListItem)) + "</li></ol>"
	case notion.BlockTypeToDo:
		out = renderToDo(b.ToDo)
	case notion.BlockTypeToggle:
		out = renderToggle(b)
	case notion.BlockTypeCode:
		out = renderCode(b.Code)
	case notion.BlockTypeImage:
		out = renderImage(b.Image)
	case notion.BlockTypeDivider:
		out = "<hr>"
	case notion.BlockTypeQuote:
		out = "<blockquote>" + RenderRichText(richText(b.Quote)) + "</blockquote>"
	case notion.BlockTypeEquation:
		out = renderEquation(b.Equation)
	case notion.BlockTypeTable:
		out = renderTable(b)
	case notion.BlockTypeCallout:
		out = renderCallout(b.Callout)
	}

	// Toggles and tables render their children inline; everything else
	// gets them appended in a wrapping div.
	if len(b.Children) > 0 && b.Type != notion.BlockTypeToggle && b.Type != notion.BlockTypeTable {
		out += `<div class="notion-children">` + Render(b.Children) + "</div>"
	}

	return out
}

func richText(payload *notion.RichTextBlock) []notion.RichText {
	if payload == nil {
		return nil
	}
	return payload.RichText
}

// RenderRichText renders a rich text sequence, escaping each run's text and
// applying annotation wrappers in a fixed nesting order: bold, italic,
// strikethrough, underline, code, then an enclosing anchor.
func RenderRichText(runs []notion.RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		content := html.EscapeString(run.PlainText)

		if run.Annotations.Bold {
			content = "<strong>" + content + "</strong>"
		}
		if run.Annotations.Italic {
			content = "<em>" + content + "</em>"
		}
		if run.Annotations.Strikethrough {
			content = "<del>" + content + "</del>"
		}
		if run.Annotations.Underline {
			content = "<u>" + content + "</u>"
		}
		if run.Annotations.Code {
			content = "<code>" + content + "</code>"
		}

		href := run.Href
		if href == "" && run.Text != nil && run.Text.Link != nil {
			href = run.Text.Link.URL
		}
		if safe := safeURL(href); safe != "" {
			content = `<a href="` + html.EscapeString(safe) + `">` + content + "</a>"
		}

		sb.WriteString(content)
	}
	return sb.String()
}

// safeURL returns the URL if it carries an allowed scheme, else "".
func safeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		return raw
	}
	return ""
}

func renderToDo(todo *notion.ToDoBlock) string {
	if todo == nil {
		return ""
	}
	checked := ""
	if todo.Checked {
		checked = " checked"
	}
	return `<div class="notion-todo"><input type="checkbox"` + checked + ` disabled> ` +
		RenderRichText(todo.RichText) + "</div>"
}

func renderToggle(b *notion.Block) string {
	out := "<details><summary>" + RenderRichText(richText(b.Toggle)) + "</summary>"
	if len(b.Children) > 0 {
		out += Render(b.Children)
	}
	return out + "</details>"
}

func renderCode(code *notion.CodeBlock) string {
	if code == nil {
		return ""
	}
	raw := notion.PlainText(code.RichText)
	if code.Language == "mermaid" {
		return FormatMermaid(raw)
	}
	return `<pre><code class="language-` + html.EscapeString(code.Language) + `">` +
		html.EscapeString(raw) + "</code></pre>"
}

func renderImage(img *notion.ImageBlock) string {
	if img == nil {
		return ""
	}
	src := safeURL(img.URL())
	if src == "" {
		return ""
	}
	caption := html.EscapeString(notion.PlainText(img.Caption))
	out := `<figure><img src="` + html.EscapeString(src) + `" alt="` + caption + `">`
	if caption != "" {
		out += "<figcaption>" + caption + "</figcaption>"
	}
	return out + "</figure>"
}

func renderEquation(eq *notion.EquationBlock) string {
	if eq == nil {
		return ""
	}
	return fmt.Sprintf(`<div class="notion-equation">$$%s$$</div>`, html.EscapeString(eq.Expression))
}

func renderTable(b *notion.Block) string {
	var sb strings.Builder
	sb.WriteString(`<div class="notion-table-container"><table class="notion-table">`)

	hasHeader := b.Table != nil && b.Table.HasColumnHeader
	for rowIdx := range b.Children {
		row := &b.Children[rowIdx]
		if row.Type != notion.BlockTypeTableRow || row.TableRow == nil {
			continue
		}
		sb.WriteString("<tr>")
		tag := "td"
		if rowIdx == 0 && hasHeader {
			tag = "th"
		}
		for _, cell := range row.TableRow.Cells {
			sb.WriteString("<" + tag + ">" + RenderRichText(cell) + "</" + tag + ">")
		}
		sb.WriteString("</tr>")
	}

	sb.WriteString("</table></div>")
	return sb.String()
}

func renderCallout(callout *notion.CalloutBlock) string {
	if callout == nil {
		return ""
	}
	icon := ""
	if callout.Icon != nil && callout.Icon.Type == "emoji" && callout.Icon.Emoji != "" {
		icon = `<span class="notion-callout-icon">` + html.EscapeString(callout.Icon.Emoji) + "</span>"
	}
	return `<div class="notion-callout">` + icon +
		`<div class="notion-callout-content">` + RenderRichText(callout.RichText) + "</div></div>"
}
