package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/sinodesk/sinodesk/app/extractor"
)

// Strategy is a site-specific fetch path for paywalled or SPA sites that
// cannot be read from their delivered HTML. Strategies are tried before the
// generic fetch; a strategy failure falls through to the generic path.
type Strategy interface {
	Name() string
	Match(u *url.URL) bool
	Fetch(ctx context.Context, client *http.Client, userAgent string, u *url.URL) (*Content, error)
}

// InfzmStrategy reads Southern Weekly (infzm.com) articles through the
// mobile content API, since the site is an SPA with a metered paywall.
type InfzmStrategy struct{}

var _ Strategy = (*InfzmStrategy)(nil)

func (s *InfzmStrategy) Name() string {
	return "infzm"
}

var infzmURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`infzm\.com/wap/?#/content/(\d+)`), // SPA route
	regexp.MustCompile(`infzm\.com/contents/(\d+)`),       // server-rendered route
}

func (s *InfzmStrategy) Match(u *url.URL) bool {
	return extractInfzmContentID(u.String()) != ""
}

func (s *InfzmStrategy) Fetch(ctx context.Context, client *http.Client, userAgent string, u *url.URL) (*Content, error) {
	contentID := extractInfzmContentID(u.String())
	if contentID == "" {
		return nil, fmt.Errorf("no infzm content ID in %s", u)
	}

	apiURL := "https://api.infzm.com/mobile/contents/" + contentID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("infzm API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("infzm API returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read infzm response: %w", err)
	}

	var payload struct {
		Data struct {
			Content struct {
				Subject     string `json:"subject"`
				Author      string `json:"author"`
				Fulltext    string `json:"fulltext"`
				Introtext   string `json:"introtext"`
				PublishTime string `json:"publish_time"`
				WordCount   int    `json:"word_count"`
				PayProperty struct {
					Mode string `json:"mode"`
				} `json:"pay_property"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse infzm response: %w", err)
	}

	c := payload.Data.Content
	if c.Fulltext == "" && c.Introtext == "" {
		return nil, fmt.Errorf("infzm response has no content")
	}

	text := htmlToText(c.Fulltext)
	if text == "" {
		text = htmlToText(c.Introtext)
	}
	text = extractor.CleanText(text)

	// A metered article delivers only a preview. Flag it instead of silently
	// storing a truncated text.
	isPaid := c.PayProperty.Mode == "meterage" || c.PayProperty.Mode == "pay"
	if isPaid && c.WordCount > 0 && utf8.RuneCountInString(text) < c.WordCount/2 {
		text += fmt.Sprintf("\n\n[Note: This article is behind a paywall. Only a preview (~%d of ~%d characters) is available.]",
			utf8.RuneCountInString(text), c.WordCount)
	}

	return &Content{
		Text: text,
		Meta: extractor.Metadata{
			Title:      c.Subject,
			SourceName: "南方周末",
			Author:     c.Author,
			PubDate:    extractor.NormalizeDate(truncate(c.PublishTime, 10)),
		},
	}, nil
}

func extractInfzmContentID(rawURL string) string {
	for _, pattern := range infzmURLPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractEmbeddedJSON pulls article content out of SPA pages that ship their
// data as embedded JSON (__NEXT_DATA__ and similar blobs).
func extractEmbeddedJSON(doc *goquery.Document) *Content {
	if script := doc.Find(`script#__NEXT_DATA__`).First(); script.Length() > 0 {
		var data nextData
		if err := json.Unmarshal([]byte(script.Text()), &data); err == nil {
			if content := extractFromNextData(data); content != nil {
				return content
			}
		}
	}

	var result *Content
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if !strings.Contains(text, "contentDetail") && !strings.Contains(text, "articleBody") {
			return true
		}
		m := contentBlobPattern.FindString(text)
		if m == "" {
			return true
		}
		var blob struct {
			ContentDetail struct {
				Content string `json:"content"`
			} `json:"contentDetail"`
			ContentDetailSnake struct {
				Content string `json:"content"`
			} `json:"content_detail"`
		}
		if err := json.Unmarshal([]byte(m), &blob); err != nil {
			return true
		}
		body := blob.ContentDetail.Content
		if body == "" {
			body = blob.ContentDetailSnake.Content
		}
		if body == "" {
			return true
		}
		result = &Content{Text: extractor.CleanText(htmlToText(body))}
		return false
	})

	return result
}

var contentBlobPattern = regexp.MustCompile(`(?s)\{.*"content(?:Detail|_detail)".*\}`)

type nextData struct {
	Props struct {
		PageProps map[string]json.RawMessage `json:"pageProps"`
	} `json:"props"`
}

// thepaperDetail is the article shape used by thepaper.cn
type thepaperDetail struct {
	ContentDetail struct {
		Name        string      `json:"name"`
		Author      string      `json:"author"`
		Source      string      `json:"source"`
		PubTime     string      `json:"pubTime"`
		PubTimeLong json.Number `json:"pubTimeLong"`
		Content     string      `json:"content"`
	} `json:"contentDetail"`
}

// genericArticle covers common Next.js article payload shapes
type genericArticle struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Source      string `json:"source"`
	Content     string `json:"content"`
	Body        string `json:"body"`
	Text        string `json:"text"`
	PublishTime string `json:"publishTime"`
	PubDate     string `json:"pubDate"`
}

func extractFromNextData(data nextData) *Content {
	props := data.Props.PageProps

	if raw, ok := props["detailData"]; ok {
		var detail thepaperDetail
		if err := json.Unmarshal(raw, &detail); err == nil && detail.ContentDetail.Content != "" {
			d := detail.ContentDetail
			body := htmlToText(d.Content)

			pubTime := d.PubTime
			if pubTime == "" {
				pubTime = d.PubTimeLong.String()
			}

			var parts []string
			if d.Name != "" {
				parts = append(parts, d.Name)
			}
			var metaLine []string
			for _, part := range []string{d.Author, d.Source, pubTime} {
				if strings.TrimSpace(part) != "" {
					metaLine = append(metaLine, strings.TrimSpace(part))
				}
			}
			if len(metaLine) > 0 {
				parts = append(parts, strings.Join(metaLine, " | "))
			}
			if body != "" {
				parts = append(parts, body)
			}

			return &Content{
				Text: strings.Join(parts, "\n"),
				Meta: extractor.Metadata{
					Title:      d.Name,
					SourceName: strings.TrimSpace(d.Source),
					Author:     strings.TrimSpace(d.Author),
					PubDate:    extractor.NormalizeDate(truncate(pubTime, 10)),
				},
			}
		}
	}

	for _, key := range []string{"article", "post", "news", "detail", "data"} {
		raw, ok := props[key]
		if !ok {
			continue
		}
		var article genericArticle
		if err := json.Unmarshal(raw, &article); err != nil {
			continue
		}
		body := article.Content
		if body == "" {
			body = article.Body
		}
		if body == "" {
			body = article.Text
		}
		if len(body) <= 50 {
			continue
		}
		text := htmlToText(body)
		if article.Title != "" {
			text = article.Title + "\n" + text
		}
		pubDate := article.PublishTime
		if pubDate == "" {
			pubDate = article.PubDate
		}
		return &Content{
			Text: text,
			Meta: extractor.Metadata{
				Title:      article.Title,
				SourceName: article.Source,
				Author:     article.Author,
				PubDate:    extractor.NormalizeDate(truncate(pubDate, 10)),
			},
		}
	}

	return nil
}

// htmlToText flattens an HTML fragment into newline-separated text
func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(blockText(doc.Selection))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
