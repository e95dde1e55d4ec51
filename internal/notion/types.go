// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

// Annotations carries the inline formatting flags of one rich text run.
type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Underline     bool `json:"underline"`
	Code          bool `json:"code"`
}

// Link is a hyperlink attached to a rich text run.
type Link struct {
	URL string `json:"url"`
}

// TextContent is the raw text payload of a rich text run.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// RichText is one formatted span of text within a block or property.
type RichText struct {
	Type        string       `json:"type,omitempty"`
	Text        *TextContent `json:"text,omitempty"`
	Annotations Annotations  `json:"annotations"`
	PlainText   string       `json:"plain_text"`
	Href        string       `json:"href,omitempty"`
}

// PlainText concatenates the plain text of a rich text sequence.
func PlainText(runs []RichText) string {
	var out string
	for _, r := range runs {
		out += r.PlainText
	}
	return out
}

// FileRef points at either an externally hosted file or one hosted by Notion.
type FileRef struct {
	Type     string `json:"type"`
	External *struct {
		URL string `json:"url"`
	} `json:"external,omitempty"`
	File *struct {
		URL string `json:"url"`
	} `json:"file,omitempty"`
}

// URL returns the usable URL of a file reference, regardless of hosting.
func (f *FileRef) URL() string {
	switch {
	case f == nil:
		return ""
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

// Property is one page property. Only the variants the sync consumes are
// modeled; the rest of the payload is ignored during decoding.
type Property struct {
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Files    []struct {
		Name     string `json:"name,omitempty"`
		Type     string `json:"type"`
		External *struct {
			URL string `json:"url"`
		} `json:"external,omitempty"`
		File *struct {
			URL string `json:"url"`
		} `json:"file,omitempty"`
	} `json:"files,omitempty"`
}

// Page is a Notion page object.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time,omitempty"`
	LastEditedTime string              `json:"last_edited_time,omitempty"`
	URL            string              `json:"url,omitempty"`
	Properties     map[string]Property `json:"properties"`
}

// Database is a Notion database object.
type Database struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	Title  []RichText `json:"title,omitempty"`
	URL    string     `json:"url,omitempty"`
}

// TitleText returns the database's title as plain text.
func (d *Database) TitleText() string {
	return PlainText(d.Title)
}

// RichTextBlock is the shared payload of text-carrying block types.
type RichTextBlock struct {
	RichText []RichText `json:"rich_text"`
}

// ToDoBlock is the payload of a to_do block.
type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// CodeBlock is the payload of a code block.
type CodeBlock struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language,omitempty"`
}

// ImageBlock is the payload of an image block.
type ImageBlock struct {
	FileRef
	Caption []RichText `json:"caption,omitempty"`
}

// EquationBlock is the payload of an equation block.
type EquationBlock struct {
	Expression string `json:"expression"`
}

// TableBlock is the payload of a table block; its rows arrive as children.
type TableBlock struct {
	TableWidth      int  `json:"table_width,omitempty"`
	HasColumnHeader bool `json:"has_column_header"`
	HasRowHeader    bool `json:"has_row_header"`
}

// TableRowBlock is the payload of a table_row block.
type TableRowBlock struct {
	Cells [][]RichText `json:"cells"`
}

// Icon is a callout icon; only emoji icons are rendered.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// CalloutBlock is the payload of a callout block.
type CalloutBlock struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// Block type identifiers consumed by the converter.
const (
	BlockTypeParagraph        = "paragraph"
	BlockTypeHeading1         = "heading_1"
	BlockTypeHeading2         = "heading_2"
	BlockTypeHeading3         = "heading_3"
	BlockTypeBulletedListItem = "bulleted_list_item"
	BlockTypeNumberedListItem = "numbered_list_item"
	BlockTypeToDo             = "to_do"
	BlockTypeToggle           = "toggle"
	BlockTypeCode             = "code"
	BlockTypeImage            = "image"
	BlockTypeDivider          = "divider"
	BlockTypeQuote            = "quote"
	BlockTypeEquation         = "equation"
	BlockTypeTable            = "table"
	BlockTypeTableRow         = "table_row"
	BlockTypeCallout          = "callout"
)

// Block is one node of a page's content tree. Exactly one of the typed
// payload fields is set, matching Type. Children is populated by the
// client's recursive fetch, not by the API response itself.
type Block struct {
	Object      string `json:"object,omitempty"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *RichTextBlock `json:"paragraph,omitempty"`
	Heading1         *RichTextBlock `json:"heading_1,omitempty"`
	Heading2         *RichTextBlock `json:"heading_2,omitempty"`
	Heading3         *RichTextBlock `json:"heading_3,omitempty"`
	BulletedListItem *RichTextBlock `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextBlock `json:"numbered_list_item,omitempty"`
	Quote            *RichTextBlock `json:"quote,omitempty"`
	Toggle           *RichTextBlock `json:"toggle,omitempty"`
	ToDo             *ToDoBlock     `json:"to_do,omitempty"`
	Code             *CodeBlock     `json:"code,omitempty"`
	Image            *ImageBlock    `json:"image,omitempty"`
	Equation         *EquationBlock `json:"equation,omitempty"`
	Table            *TableBlock    `json:"table,omitempty"`
	TableRow         *TableRowBlock `json:"table_row,omitempty"`
	Callout          *CalloutBlock  `json:"callout,omitempty"`

	Children []Block `json:"children,omitempty"`
}
