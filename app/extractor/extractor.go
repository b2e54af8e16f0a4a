package extractor

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Metadata holds best-effort article metadata. Every field is independently
// optional; a missing field is an empty string, never an error.
type Metadata struct {
	Title      string
	SourceName string
	Author     string
	PubDate    string // normalized to YYYY-MM-DD, or empty
}

// Merge fills empty fields of m from other
func (m *Metadata) Merge(other Metadata) {
	if m.Title == "" {
		m.Title = other.Title
	}
	if m.SourceName == "" {
		m.SourceName = other.SourceName
	}
	if m.Author == "" {
		m.Author = other.Author
	}
	if m.PubDate == "" {
		m.PubDate = other.PubDate
	}
}

// Extract derives metadata from raw HTML. Structured data (og: and meta tags)
// is preferred; the caller can fall back to text heuristics via FindDateInText
// and FindBylineInText. Deterministic: no network calls, no randomness.
func Extract(html []byte) Metadata {
	var meta Metadata

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return meta
	}

	meta.Title = extractTitle(doc)
	meta.SourceName = extractSourceName(doc)
	meta.Author = extractAuthor(doc)
	meta.PubDate = extractPubDate(doc)

	return meta
}

func extractTitle(doc *goquery.Document) string {
	if content := metaProperty(doc, "og:title"); content != "" {
		return content
	}

	raw := strings.TrimSpace(doc.Find("title").First().Text())
	if raw == "" {
		return ""
	}
	// Strip site-name suffixes like " - 新浪网" or "_腾讯新闻"
	if stripped := stripTitleSuffix(raw); stripped != "" {
		return stripped
	}
	return raw
}

// titleSeparators are the characters Chinese news sites put between the
// headline and the site name in <title>.
const titleSeparators = "_|–—"

func stripTitleSuffix(title string) string {
	runes := []rune(title)
	cut := -1
	for i, r := range runes {
		if strings.ContainsRune(titleSeparators, r) {
			cut = i
		}
		// A hyphen only counts as a separator when spaced, otherwise it
		// splits hyphenated words.
		if r == '-' && i > 0 && i < len(runes)-1 && (runes[i-1] == ' ' || runes[i+1] == ' ') {
			cut = i
		}
	}
	if cut <= 0 {
		return title
	}
	return strings.TrimSpace(string(runes[:cut]))
}

func extractSourceName(doc *goquery.Document) string {
	if content := metaProperty(doc, "og:site_name"); content != "" {
		return content
	}
	for _, name := range []string{"source", "publisher"} {
		if content := metaName(doc, name); content != "" {
			return content
		}
	}
	return ""
}

func extractAuthor(doc *goquery.Document) string {
	if content := metaName(doc, "author"); content != "" {
		return content
	}
	return metaProperty(doc, "article:author")
}

func extractPubDate(doc *goquery.Document) string {
	for _, prop := range []string{"article:published_time", "og:article:published_time"} {
		if content := metaProperty(doc, prop); content != "" {
			if date := NormalizeDate(content); date != "" {
				return date
			}
		}
	}
	for _, name := range []string{"publishdate", "publish_date", "date", "PubDate"} {
		if content := metaName(doc, name); content != "" {
			if date := NormalizeDate(content); date != "" {
				return date
			}
		}
	}
	return ""
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// NormalizeDate parses a date-ish string and returns it as YYYY-MM-DD, or
// empty if it cannot be parsed.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	// Chinese date format: 2024年1月5日
	if m := cnDatePattern.FindStringSubmatch(value); m != nil {
		value = m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3])
	}

	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return ""
	}
	return parsed.Format("2006-01-02")
}

var (
	cnDatePattern   = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	textDatePattern = regexp.MustCompile(`(\d{4})[-/年](\d{1,2})[-/月](\d{1,2})`)
	bylinePattern   = regexp.MustCompile(`(?:记者|作者|文)[:：/｜|]\s*([\p{Han}A-Za-z·\x{00B7}]{2,12})`)
)

// FindDateInText looks for a date-like substring near the top of the article
// text. Used as a fallback when meta tags carry no publication date.
func FindDateInText(text string) string {
	head := text
	if len(head) > 600 {
		head = head[:600]
	}
	m := textDatePattern.FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return NormalizeDate(m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3]))
}

// FindBylineInText looks for a reporter byline near the top of the article
// text, e.g. "记者 张三" or "作者：李四".
func FindBylineInText(text string) string {
	head := text
	if len(head) > 600 {
		head = head[:600]
	}
	m := bylinePattern.FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
