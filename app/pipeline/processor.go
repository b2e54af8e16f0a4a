package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sinodesk/sinodesk/app/database"
	"github.com/sinodesk/sinodesk/app/extractor"
	"github.com/sinodesk/sinodesk/app/fetcher"
	"github.com/sinodesk/sinodesk/app/llm"
	"github.com/sinodesk/sinodesk/app/outlets"
)

// ErrNoInput is returned when a translate request has neither text nor URL
var ErrNoInput = errors.New("no text or URL provided")

// ErrNoContent is returned when a fetch yields no usable article text
var ErrNoContent = errors.New("no text content found")

// TranslateRequest is one article-translation operation. Exactly one of Text
// and URL drives the source; ProjectID files the result (nil means unfiled).
type TranslateRequest struct {
	Text      string
	URL       string
	ProjectID *string
}

// Processor runs the article pipeline: fetch, metadata extraction and outlet
// matching, translation, summarization, persistence. Each call is
// request-scoped and runs to completion.
type Processor struct {
	fetcher  *fetcher.Fetcher
	matcher  *outlets.Matcher
	svc      llm.Service
	articles database.ArticleRepository
}

// NewProcessor creates a pipeline processor
func NewProcessor(f *fetcher.Fetcher, m *outlets.Matcher, svc llm.Service,
	articles database.ArticleRepository) *Processor {
	return &Processor{
		fetcher:  f,
		matcher:  m,
		svc:      svc,
		articles: articles,
	}
}

// Translate runs the full pipeline for one article and persists the result.
// On translation failure nothing is stored; the operation can be retried as a
// whole. Fetch failures propagate as *fetcher.FetchError, translation
// failures as *llm.TranslationError.
func (p *Processor) Translate(ctx context.Context, req TranslateRequest) (*database.Article, error) {
	text := strings.TrimSpace(req.Text)
	rawURL := strings.TrimSpace(req.URL)
	if text == "" && rawURL == "" {
		return nil, ErrNoInput
	}

	var meta extractor.Metadata
	var outlet *database.Outlet

	if rawURL != "" {
		content, err := p.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		text = content.Text

		// Metadata extraction and outlet matching are independent of each
		// other; run them side by side.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			meta = content.Meta
			if len(content.HTML) > 0 {
				meta.Merge(extractor.Extract(content.HTML))
			}
			if meta.PubDate == "" {
				meta.PubDate = extractor.FindDateInText(text)
			}
			if meta.Author == "" {
				meta.Author = extractor.FindBylineInText(text)
			}
		}()
		go func() {
			defer wg.Done()
			matched, err := p.matcher.Match(rawURL)
			if err != nil {
				slog.Warn("Outlet matching failed", "url", rawURL, "error", err)
				return
			}
			outlet = matched
		}()
		wg.Wait()
	}

	if text == "" {
		return nil, ErrNoContent
	}

	started := time.Now()
	englishText, err := p.svc.Translate(ctx, text)
	if err != nil {
		return nil, err
	}

	summary, err := p.svc.Summarize(ctx, englishText)
	if err != nil {
		return nil, err
	}
	slog.Debug("Article translated", "url", rawURL, "duration", time.Since(started))

	article := &database.Article{
		ID:          uuid.NewString(),
		URL:         rawURL,
		ChineseText: text,
		EnglishText: englishText,
		Summary:     summary,
		Title:       meta.Title,
		SourceName:  meta.SourceName,
		Author:      meta.Author,
		ProjectID:   req.ProjectID,
		Highlights:  []database.Highlight{},
		CreatedAt:   time.Now().UTC(),
	}
	if meta.PubDate != "" {
		if pubDate, err := time.Parse("2006-01-02", meta.PubDate); err == nil {
			article.PubDate = &pubDate
		}
	}
	if outlet != nil {
		article.OutletID = &outlet.ID
	}

	if err := p.articles.Insert(article); err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	return article, nil
}

// Retranslate redoes the translation and summary of a stored article from its
// original text. The stored translation is only replaced after both LLM calls
// succeed, so a failed redo leaves the article untouched.
func (p *Processor) Retranslate(ctx context.Context, articleID string) (*database.Article, error) {
	article, err := p.articles.Get(articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, nil
	}

	englishText, err := p.svc.Translate(ctx, article.ChineseText)
	if err != nil {
		return nil, err
	}

	summary, err := p.svc.Summarize(ctx, englishText)
	if err != nil {
		return nil, err
	}

	if err := p.articles.UpdateTranslation(article.ID, englishText, summary); err != nil {
		return nil, fmt.Errorf("failed to update translation: %w", err)
	}

	article.EnglishText = englishText
	article.Summary = summary
	return article, nil
}
