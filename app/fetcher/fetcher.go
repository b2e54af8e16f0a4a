package fetcher

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/sinodesk/sinodesk/app/extractor"
)

const maxBodySize = 10 << 20

// Fetcher retrieves article content from a URL. Known paywalled/SPA sites go
// through a registered site strategy first; everything else gets generic HTML
// extraction with a readability fallback.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	strategies []Strategy
}

// New creates a fetcher with the default site strategies registered
func New(client *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		client:     client,
		userAgent:  userAgent,
		strategies: []Strategy{&InfzmStrategy{}},
	}
}

// Fetch retrieves and extracts article content from the given URL. It has no
// side effects beyond the network call. Transient network failures are retried
// once; everything else fails with *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, &FetchError{URL: rawURL, Reason: "invalid URL", Err: err}
	}

	for _, strategy := range f.strategies {
		if !strategy.Match(parsed) {
			continue
		}
		content, err := strategy.Fetch(ctx, f.client, f.userAgent, parsed)
		if err != nil {
			slog.Debug("Site strategy failed, falling back to generic fetch",
				"strategy", strategy.Name(), "url", rawURL, "error", err)
			break
		}
		if content != nil && content.Text != "" {
			slog.Debug("Article fetched via site strategy",
				"strategy", strategy.Name(), "url", rawURL)
			return content, nil
		}
		break
	}

	body, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	content := extractFromHTML(body)
	content.HTML = body
	if content.Text == "" {
		return nil, &FetchError{URL: rawURL, Reason: "no article content found"}
	}

	return content, nil
}

// get performs the GET request with one retry on transport-level failure
// (timeout, connection reset). HTTP-level failures are permanent.
func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.do(ctx, rawURL)
	if err != nil {
		slog.Debug("Fetch failed, retrying once", "url", rawURL, "error", err)
		resp, err = f.do(ctx, rawURL)
		if err != nil {
			return nil, &FetchError{URL: rawURL, Reason: "network failure", Err: err}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, Reason: "unexpected status " + resp.Status}
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && !isTextual(mediaType) {
			return nil, &FetchError{URL: rawURL, Reason: "unsupported content type " + mediaType}
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Reason: "failed to read response", Err: err}
	}

	return body, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	return f.client.Do(req)
}

func isTextual(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain", "application/json":
		return true
	}
	return strings.HasPrefix(mediaType, "text/")
}

// extractFromHTML pulls article text out of a fetched page. Order of attempts:
// embedded JSON (Next.js and similar SPA payloads), known content containers,
// densest Chinese-text div, then readability.
func extractFromHTML(body []byte) *Content {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return &Content{}
	}

	if content := extractEmbeddedJSON(doc); content != nil && content.Text != "" {
		return content
	}

	stripBoilerplate(doc)

	if container := findContainer(doc); container != nil {
		text := extractor.CleanText(blockText(container))
		if text != "" {
			return &Content{Text: text}
		}
	}

	if article, err := readability.FromReader(bytes.NewReader(body), nil); err == nil {
		text := extractor.CleanText(article.TextContent)
		if text != "" {
			return &Content{Text: text}
		}
	}

	return &Content{Text: extractor.CleanText(blockText(doc.Selection))}
}

// boilerplateTokens are class/id names whose elements never hold article text
var boilerplateTokens = map[string]bool{
	"nav": true, "navbar": true, "menu": true, "sidebar": true, "footer": true,
	"header": true, "banner": true, "breadcrumb": true, "comments": true,
	"share": true, "social": true, "related": true, "recommend": true,
	"ad": true, "ads": true, "advertisement": true, "app-download": true,
	"copyright": true, "disclaimer": true, "legal": true, "privacy": true,
	"feedback": true, "login": true, "signup": true,
}

func stripBoilerplate(doc *goquery.Document) {
	doc.Find("nav, header, footer, aside, noscript, iframe, svg, form, button").Remove()

	doc.Find("[role]").Each(func(_ int, sel *goquery.Selection) {
		switch sel.AttrOr("role", "") {
		case "navigation", "banner", "complementary", "contentinfo":
			sel.Remove()
		}
	})

	doc.Find("[class]").Each(func(_ int, sel *goquery.Selection) {
		for _, class := range strings.Fields(sel.AttrOr("class", "")) {
			if boilerplateTokens[strings.ToLower(class)] {
				sel.Remove()
				return
			}
		}
	})

	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		if boilerplateTokens[strings.ToLower(sel.AttrOr("id", ""))] {
			sel.Remove()
		}
	})
}

// contentSelectors are container selectors common across Chinese news sites
var contentSelectors = []string{
	".article-content", ".article_content", ".news_txt", ".news-content",
	".post_body", ".post_text", "#artibody", "#article",
}

// hashedContentClass matches build-hashed class names like "cententWrap__x3f9"
var hashedContentClass = regexp.MustCompile(`(?i)(?:content|article|news.?(?:txt|body|detail)|centet|text.?wrap|post.?body).*__`)

func findContainer(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}

	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}

	var hashed *goquery.Selection
	doc.Find("div[class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if hashedContentClass.MatchString(sel.AttrOr("class", "")) {
			hashed = sel
			return false
		}
		return true
	})
	if hashed != nil {
		return hashed
	}

	return densestChineseDiv(doc)
}

// densestChineseDiv picks the narrowest div that still holds the bulk of the
// page's Chinese text.
func densestChineseDiv(doc *goquery.Document) *goquery.Selection {
	type candidate struct {
		sel     *goquery.Selection
		cnChars int
		length  int
	}

	var candidates []candidate
	doc.Find("div").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		cnChars := extractor.CountChinese(text)
		if cnChars > 100 {
			candidates = append(candidates, candidate{sel: sel, cnChars: cnChars, length: len(text)})
		}
	})
	if len(candidates) == 0 {
		return nil
	}

	maxCN := 0
	for _, c := range candidates {
		if c.cnChars > maxCN {
			maxCN = c.cnChars
		}
	}

	threshold := int(float64(maxCN) * 0.6)
	best := candidate{length: maxBodySize + 1}
	for _, c := range candidates {
		if c.cnChars >= threshold && c.length < best.length {
			best = c
		}
	}

	return best.sel
}

// blockText renders a selection as plain text with one line per block element,
// the way a reader sees paragraphs.
func blockText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, node := range sel.Nodes {
		writeNodeText(&sb, node)
	}
	return sb.String()
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "blockquote": true, "figcaption": true,
}

func writeNodeText(sb *strings.Builder, node *html.Node) {
	if node.Type == html.TextNode {
		sb.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode {
		switch node.Data {
		case "script", "style":
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeNodeText(sb, child)
	}
	if node.Type == html.ElementNode && blockElements[node.Data] {
		sb.WriteString("\n")
	}
}
