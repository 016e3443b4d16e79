// Package models holds the wire types shared by the backend client, the
// session and the renderer.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentItem is one translatable unit: a paragraph, a table cell or an OCR
// segment. Fields the client does not interpret (tag, index, is_table, row,
// col, ...) are kept in Extra and sent back unchanged, because the backend
// patches formatted HTML by id.
type ContentItem struct {
	Text        string
	SourceImage int // 1-based image position; 0 when not from an image batch
	ID          string
	Page        int
	Paragraph   int // set only for whole-image items
	Extra       map[string]json.RawMessage
}

// TranslatedItem pairs an original unit with its translation. Paragraph
// matches the 1-based index of the originating ContentItem.
type TranslatedItem struct {
	Paragraph   int
	Text        string
	Translation string
	ID          string
	SourceImage int
	Extra       map[string]json.RawMessage
}

var contentKeys = []string{"text", "source_image", "id", "page", "paragraph"}

var translatedKeys = []string{"paragraph", "text", "translation", "id", "source_image"}

func (c ContentItem) MarshalJSON() ([]byte, error) {
	m := cloneExtra(c.Extra, contentKeys)
	if err := putJSON(m, "text", c.Text); err != nil {
		return nil, err
	}
	if err := putNonZero(m, "source_image", c.SourceImage); err != nil {
		return nil, err
	}
	if c.ID != "" {
		if err := putJSON(m, "id", c.ID); err != nil {
			return nil, err
		}
	}
	if err := putNonZero(m, "page", c.Page); err != nil {
		return nil, err
	}
	if err := putNonZero(m, "paragraph", c.Paragraph); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out ContentItem
	if err := takeString(raw, "text", &out.Text); err != nil {
		return err
	}
	if err := takeInt(raw, "source_image", &out.SourceImage); err != nil {
		return err
	}
	if err := takeID(raw, &out.ID); err != nil {
		return err
	}
	if err := takeInt(raw, "page", &out.Page); err != nil {
		return err
	}
	if err := takeInt(raw, "paragraph", &out.Paragraph); err != nil {
		return err
	}
	out.Extra = cloneExtra(raw, contentKeys)
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	*c = out
	return nil
}

func (t TranslatedItem) MarshalJSON() ([]byte, error) {
	m := cloneExtra(t.Extra, translatedKeys)
	if err := putNonZero(m, "paragraph", t.Paragraph); err != nil {
		return nil, err
	}
	if err := putJSON(m, "text", t.Text); err != nil {
		return nil, err
	}
	if err := putJSON(m, "translation", t.Translation); err != nil {
		return nil, err
	}
	if t.ID != "" {
		if err := putJSON(m, "id", t.ID); err != nil {
			return nil, err
		}
	}
	if err := putNonZero(m, "source_image", t.SourceImage); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (t *TranslatedItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out TranslatedItem
	if err := takeInt(raw, "paragraph", &out.Paragraph); err != nil {
		return err
	}
	if err := takeString(raw, "text", &out.Text); err != nil {
		return err
	}
	if err := takeString(raw, "translation", &out.Translation); err != nil {
		return err
	}
	if err := takeID(raw, &out.ID); err != nil {
		return err
	}
	if err := takeInt(raw, "source_image", &out.SourceImage); err != nil {
		return err
	}
	out.Extra = cloneExtra(raw, translatedKeys)
	if len(out.Extra) == 0 {
		out.Extra = nil
	}
	*t = out
	return nil
}

// NumberTranslations assigns index+1 to items the backend left unnumbered.
func NumberTranslations(items []TranslatedItem) {
	for i := range items {
		if items[i].Paragraph == 0 {
			items[i].Paragraph = i + 1
		}
	}
}

// Texts returns the original text of each item, in order.
func Texts(items []ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// Translations returns the translation of each item, in order.
func Translations(items []TranslatedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Translation
	}
	return out
}

// CloneContent deep-copies a content slice, preserving nil.
func CloneContent(items []ContentItem) []ContentItem {
	if items == nil {
		return nil
	}
	out := make([]ContentItem, len(items))
	for i, it := range items {
		it.Extra = cloneExtra(it.Extra, nil)
		out[i] = it
	}
	return out
}

// CloneTranslated deep-copies a translation slice, preserving nil.
func CloneTranslated(items []TranslatedItem) []TranslatedItem {
	if items == nil {
		return nil
	}
	out := make([]TranslatedItem, len(items))
	for i, it := range items {
		it.Extra = cloneExtra(it.Extra, nil)
		out[i] = it
	}
	return out
}

// ImageMode selects how a pending image batch is translated.
type ImageMode string

const (
	// ModeSegment recognizes text per image, then translates paragraphs.
	ModeSegment ImageMode = "segment"
	// ModeWhole sends each image to the model as-is.
	ModeWhole ImageMode = "whole"
)

func ParseImageMode(s string) (ImageMode, error) {
	switch ImageMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSegment:
		return ModeSegment, nil
	case ModeWhole:
		return ModeWhole, nil
	default:
		return "", fmt.Errorf("invalid image mode %q (want segment or whole)", s)
	}
}

// ExportFormat is the file type produced by the backend export.
type ExportFormat string

const (
	FormatTXT  ExportFormat = "txt"
	FormatDOCX ExportFormat = "docx"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTXT:
		return FormatTXT, nil
	case FormatDOCX:
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("invalid export format %q (want txt or docx)", s)
	}
}

// Extension returns the file extension without a dot.
func (f ExportFormat) Extension() string {
	return string(f)
}

// Label is the human-readable name used in status messages.
func (f ExportFormat) Label() string {
	if f == FormatDOCX {
		return "Word"
	}
	return "TXT"
}

func cloneExtra(src map[string]json.RawMessage, skip []string) map[string]json.RawMessage {
	if src == nil {
		if skip == nil {
			return nil
		}
		return make(map[string]json.RawMessage)
	}
	out := make(map[string]json.RawMessage, len(src))
outer:
	for k, v := range src {
		for _, s := range skip {
			if k == s {
				continue outer
			}
		}
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func putJSON(m map[string]json.RawMessage, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	m[key] = b
	return nil
}

func putNonZero(m map[string]json.RawMessage, key string, v int) error {
	if v == 0 {
		return nil
	}
	return putJSON(m, key, v)
}

func takeString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func takeInt(raw map[string]json.RawMessage, key string, dst *int) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	*dst = int(f)
	return nil
}

// takeID accepts both string and numeric ids.
func takeID(raw map[string]json.RawMessage, dst *string) error {
	v, ok := raw["id"]
	if !ok || string(v) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		*dst = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*dst = n.String()
	return nil
}
