package research

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var accessed = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFormatCitationInline(t *testing.T) {
	meta := CitationMeta{
		Title:  "某公司被立案调查",
		Source: "The Paper",
		Author: "张伟",
		Date:   "2024-03-15",
		URL:    "https://www.thepaper.cn/newsDetail_forward_123",
	}

	citation, err := FormatCitation(meta, StyleInline, accessed)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	expected := "Source: The Paper, 张伟, \"某公司被立案调查\", 2024-03-15.\nAvailable at: https://www.thepaper.cn/newsDetail_forward_123"
	if citation != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, citation)
	}
}

func TestFormatCitationFootnote(t *testing.T) {
	meta := CitationMeta{
		Title:  "调查报道",
		Source: "Caixin",
		Date:   "2024-03-15",
		URL:    "https://example.cn/a",
	}

	citation, err := FormatCitation(meta, StyleFootnote, accessed)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(citation, "[Accessed: 2024-06-01]") {
		t.Errorf("Expected accessed date in footnote citation, got '%s'", citation)
	}
	if !strings.Contains(citation, "Caixin (Chinese)") {
		t.Errorf("Expected source with language tag, got '%s'", citation)
	}
	if strings.HasPrefix(citation, ", ") {
		t.Errorf("Expected no dangling author clause, got '%s'", citation)
	}
}

func TestFormatCitationShort(t *testing.T) {
	meta := CitationMeta{Title: "标题", Source: "Xinhua", Date: "2024-01-05"}

	citation, err := FormatCitation(meta, StyleShort, accessed)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if citation != "Xinhua (CN), 2024-01-05 — \"标题\"" {
		t.Errorf("Unexpected short citation: '%s'", citation)
	}
}

func TestFormatCitationMissingFieldsUsePlaceholders(t *testing.T) {
	citation, err := FormatCitation(CitationMeta{}, StyleInline, accessed)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(citation, "Unknown Source") {
		t.Errorf("Expected 'Unknown Source' placeholder, got '%s'", citation)
	}
	if !strings.Contains(citation, "(Untitled Article)") {
		t.Errorf("Expected '(Untitled Article)' placeholder, got '%s'", citation)
	}
	if !strings.Contains(citation, "n.d.") {
		t.Errorf("Expected 'n.d.' for missing date, got '%s'", citation)
	}
	if strings.Contains(citation, "None") || strings.Contains(citation, "<nil>") {
		t.Errorf("Expected no literal empty-value rendering, got '%s'", citation)
	}
}

func TestFormatCitationInvalidStyle(t *testing.T) {
	_, err := FormatCitation(CitationMeta{Title: "x"}, Style("chicago"), accessed)
	if !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("Expected ErrInvalidStyle, got: %v", err)
	}
}

func TestFormatCitationIsPure(t *testing.T) {
	meta := CitationMeta{Title: "标题", Source: "来源", Date: "2024-01-05", URL: "https://example.cn"}
	first, err := FormatCitation(meta, StyleFootnote, accessed)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := FormatCitation(meta, StyleFootnote, accessed)
		if err != nil || got != first {
			t.Errorf("Expected identical citation on repeat calls, got '%s' vs '%s'", got, first)
		}
	}
}
