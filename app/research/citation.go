package research

import (
	"errors"
	"fmt"
	"time"
)

// Style selects a citation template
type Style string

const (
	StyleInline   Style = "inline"
	StyleFootnote Style = "footnote"
	StyleShort    Style = "short"
)

// ErrInvalidStyle is returned for an unknown citation style. This is a caller
// programming error, not a recoverable condition.
var ErrInvalidStyle = errors.New("unknown citation style")

// CitationMeta is the article metadata a citation is built from. Empty fields
// are omitted or replaced with neutral placeholders, never rendered literally.
type CitationMeta struct {
	Title  string
	Source string
	Author string
	Date   string // YYYY-MM-DD, or empty
	URL    string
}

// FormatCitation renders a citation string for the given style. Pure function:
// identical input always yields the identical string.
func FormatCitation(meta CitationMeta, style Style, accessed time.Time) (string, error) {
	source := meta.Source
	if source == "" {
		source = "Unknown Source"
	}
	title := meta.Title
	if title == "" {
		title = "(Untitled Article)"
	}
	date := meta.Date
	if date == "" {
		date = "n.d."
	}

	switch style {
	case StyleFootnote:
		citation := ""
		if meta.Author != "" {
			citation = meta.Author + ", "
		}
		citation += fmt.Sprintf("%q, %s (Chinese), %s", title, source, date)
		if meta.URL != "" {
			citation += ", " + meta.URL
		}
		return citation + fmt.Sprintf(" [Accessed: %s]", accessed.Format("2006-01-02")), nil

	case StyleShort:
		citation := fmt.Sprintf("%s (CN), %s — %q", source, date, title)
		if meta.URL != "" {
			citation += "\n" + meta.URL
		}
		return citation, nil

	case StyleInline:
		citation := fmt.Sprintf("Source: %s, ", source)
		if meta.Author != "" {
			citation += meta.Author + ", "
		}
		citation += fmt.Sprintf("%q, %s.", title, date)
		if meta.URL != "" {
			citation += "\nAvailable at: " + meta.URL
		}
		return citation, nil

	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStyle, style)
	}
}
