package research

import (
	"fmt"
	"time"

	"github.com/sinodesk/sinodesk/app/database"
)

// Export payloads are what the PDF/report exporter consumes. This package
// assembles the structured data; rendering is the exporter's concern.

// ArticleExport is the report payload for a single article
type ArticleExport struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	TitleEN     string               `json:"title_en,omitempty"`
	URL         string               `json:"url,omitempty"`
	SourceName  string               `json:"source_name,omitempty"`
	Author      string               `json:"author,omitempty"`
	PubDate     string               `json:"pub_date,omitempty"`
	ChineseText string               `json:"chinese_text"`
	EnglishText string               `json:"english_text"`
	Summary     string               `json:"summary"`
	Highlights  []database.Highlight `json:"highlights"`
	Notes       string               `json:"notes,omitempty"`
	Citations   []string             `json:"citations"`
	GeneratedAt string               `json:"generated_at"`
}

// TimelineEntry is one row of a project's chronological view
type TimelineEntry struct {
	ArticleID string `json:"article_id"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Undated   bool   `json:"undated,omitempty"`
}

// ProjectExport is the report payload for a whole project
type ProjectExport struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ClientNameCN string          `json:"client_name_cn,omitempty"`
	ClientNameEN string          `json:"client_name_en,omitempty"`
	Industry     string          `json:"industry,omitempty"`
	Status       string          `json:"status"`
	DueBy        string          `json:"due_by,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Timeline     []TimelineEntry `json:"timeline"`
	Entities     []EntityCount   `json:"entities"`
	Articles     []ArticleExport `json:"articles"`
	GeneratedAt  string          `json:"generated_at"`
}

// BuildArticleExport assembles the export payload for one article. The outlet
// may be nil; the scraped source name is used as fallback for citations.
func BuildArticleExport(article *database.Article, outlet *database.Outlet, style Style, now time.Time) (*ArticleExport, error) {
	citation, err := FormatCitation(citationMeta(article, outlet), style, now)
	if err != nil {
		return nil, err
	}

	export := &ArticleExport{
		ID:          article.ID,
		Title:       article.Title,
		TitleEN:     article.TitleEN,
		URL:         article.URL,
		SourceName:  sourceName(article, outlet),
		Author:      article.Author,
		ChineseText: article.ChineseText,
		EnglishText: article.EnglishText,
		Summary:     article.Summary,
		Highlights:  article.Highlights,
		Notes:       article.Notes,
		Citations:   []string{citation},
		GeneratedAt: now.Format("2006-01-02"),
	}
	if article.PubDate != nil {
		export.PubDate = article.PubDate.Format("2006-01-02")
	}

	return export, nil
}

// BuildProjectExport assembles the export payload for a project: profile,
// chronological timeline, aggregated entities, and per-article sections.
func BuildProjectExport(project *database.Project, articles []database.Article,
	outletsByID map[string]*database.Outlet, entities []EntityCount,
	style Style, now time.Time) (*ProjectExport, error) {

	export := &ProjectExport{
		ID:           project.ID,
		Name:         project.Name,
		ClientNameCN: project.ClientNameCN,
		ClientNameEN: project.ClientNameEN,
		Industry:     project.Industry,
		Status:       project.Status,
		Notes:        project.Notes,
		Timeline:     []TimelineEntry{},
		Entities:     entities,
		Articles:     []ArticleExport{},
		GeneratedAt:  now.Format("2006-01-02"),
	}
	if entities == nil {
		export.Entities = []EntityCount{}
	}
	if project.DueBy != nil {
		export.DueBy = project.DueBy.Format("2006-01-02")
	}

	for _, article := range Timeline(articles) {
		entry := TimelineEntry{
			ArticleID: article.ID,
			Title:     articleLabel(&article),
		}
		if article.PubDate != nil {
			entry.Date = article.PubDate.Format("2006-01-02")
		} else {
			entry.Date = article.CreatedAt.Format("2006-01-02")
			entry.Undated = true
		}
		export.Timeline = append(export.Timeline, entry)
	}

	for i := range articles {
		article := &articles[i]
		var outlet *database.Outlet
		if article.OutletID != nil {
			outlet = outletsByID[*article.OutletID]
		}
		articleExport, err := BuildArticleExport(article, outlet, style, now)
		if err != nil {
			return nil, fmt.Errorf("failed to build export for article %s: %w", article.ID, err)
		}
		export.Articles = append(export.Articles, *articleExport)
	}

	return export, nil
}

func citationMeta(article *database.Article, outlet *database.Outlet) CitationMeta {
	meta := CitationMeta{
		Title:  article.Title,
		Source: sourceName(article, outlet),
		Author: article.Author,
		URL:    article.URL,
	}
	if article.PubDate != nil {
		meta.Date = article.PubDate.Format("2006-01-02")
	}
	return meta
}

func sourceName(article *database.Article, outlet *database.Outlet) string {
	if outlet != nil {
		if outlet.NameEN != "" {
			return outlet.NameEN
		}
		return outlet.Name
	}
	if article.SourceNameEN != "" {
		return article.SourceNameEN
	}
	return article.SourceName
}

func articleLabel(article *database.Article) string {
	if article.Title != "" {
		return article.Title
	}
	if article.URL != "" {
		return article.URL
	}
	return "(untitled)"
}
