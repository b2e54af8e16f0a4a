package api

import (
	"unicode/utf8"

	"github.com/sinodesk/sinodesk/app/database"
)

// Request bodies

type translateRequest struct {
	Text      string  `json:"text"`
	URL       string  `json:"url"`
	ProjectID *string `json:"project_id"`
}

type annotateRequest struct {
	Notes      string               `json:"notes"`
	Highlights []database.Highlight `json:"highlights"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type metadataRequest struct {
	Title        *string `json:"title"`
	TitleEN      *string `json:"title_en"`
	SourceName   *string `json:"source_name"`
	SourceNameEN *string `json:"source_name_en"`
	Author       *string `json:"author"`
	PubDate      *string `json:"pub_date"`
	URL          *string `json:"url"`
}

type assignProjectRequest struct {
	ProjectID *string `json:"project_id"`
}

type assignOutletRequest struct {
	OutletID *string `json:"outlet_id"`
}

type projectRequest struct {
	Name         string `json:"name"`
	ClientNameCN string `json:"client_name_cn"`
	ClientNameEN string `json:"client_name_en"`
	Industry     string `json:"industry"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	DueBy        string `json:"due_by"`
}

type outletRequest struct {
	Domain          string `json:"domain"`
	Name            string `json:"name"`
	NameEN          string `json:"name_en"`
	Type            string `json:"type"`
	CredibilityTier string `json:"credibility_tier"`
	Language        string `json:"language"`
	Notes           string `json:"notes"`
}

// Response bodies

type articleSummaryResponse struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	Preview        string  `json:"preview"`
	Summary        string  `json:"summary,omitempty"`
	ProjectID      *string `json:"project_id"`
	OutletID       *string `json:"outlet_id,omitempty"`
	PubDate        string  `json:"pub_date"`
	HighlightCount int     `json:"highlight_count"`
	CreatedAt      string  `json:"created_at"`
}

type articleResponse struct {
	ID           string               `json:"id"`
	URL          string               `json:"url"`
	Title        string               `json:"title"`
	TitleEN      string               `json:"title_en"`
	ChineseText  string               `json:"chinese_text"`
	EnglishText  string               `json:"english_text"`
	Summary      string               `json:"summary"`
	SourceName   string               `json:"source_name"`
	SourceNameEN string               `json:"source_name_en"`
	Author       string               `json:"author"`
	PubDate      string               `json:"pub_date"`
	Notes        string               `json:"notes"`
	Highlights   []database.Highlight `json:"highlights"`
	OutletID     *string              `json:"outlet_id"`
	ProjectID    *string              `json:"project_id"`
	CreatedAt    string               `json:"created_at"`
}

type projectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ClientNameCN string `json:"client_name_cn"`
	ClientNameEN string `json:"client_name_en"`
	Industry     string `json:"industry"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	DueBy        string `json:"due_by"`
	ArticleCount int    `json:"article_count"`
	CreatedAt    string `json:"created_at"`
}

type outletResponse struct {
	ID              string `json:"id"`
	Domain          string `json:"domain"`
	Name            string `json:"name"`
	NameEN          string `json:"name_en"`
	Type            string `json:"type"`
	CredibilityTier string `json:"credibility_tier"`
	Language        string `json:"language"`
	Notes           string `json:"notes"`
	ArticleCount    int    `json:"article_count"`
	CreatedAt       string `json:"created_at"`
}

const previewLength = 80

// preview returns the first runes of the original text for list views
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLength])
}

func newArticleSummary(article *database.Article) articleSummaryResponse {
	resp := articleSummaryResponse{
		ID:             article.ID,
		URL:            article.URL,
		Title:          article.Title,
		Preview:        preview(article.ChineseText),
		Summary:        article.Summary,
		ProjectID:      article.ProjectID,
		OutletID:       article.OutletID,
		HighlightCount: len(article.Highlights),
		CreatedAt:      article.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if article.PubDate != nil {
		resp.PubDate = article.PubDate.Format("2006-01-02")
	}
	return resp
}

func newArticleResponse(article *database.Article) articleResponse {
	resp := articleResponse{
		ID:           article.ID,
		URL:          article.URL,
		Title:        article.Title,
		TitleEN:      article.TitleEN,
		ChineseText:  article.ChineseText,
		EnglishText:  article.EnglishText,
		Summary:      article.Summary,
		SourceName:   article.SourceName,
		SourceNameEN: article.SourceNameEN,
		Author:       article.Author,
		Notes:        article.Notes,
		Highlights:   article.Highlights,
		OutletID:     article.OutletID,
		ProjectID:    article.ProjectID,
		CreatedAt:    article.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if resp.Highlights == nil {
		resp.Highlights = []database.Highlight{}
	}
	if article.PubDate != nil {
		resp.PubDate = article.PubDate.Format("2006-01-02")
	}
	return resp
}

func newProjectResponse(project *database.Project, articleCount int) projectResponse {
	resp := projectResponse{
		ID:           project.ID,
		Name:         project.Name,
		ClientNameCN: project.ClientNameCN,
		ClientNameEN: project.ClientNameEN,
		Industry:     project.Industry,
		Status:       project.Status,
		Notes:        project.Notes,
		ArticleCount: articleCount,
		CreatedAt:    project.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if project.DueBy != nil {
		resp.DueBy = project.DueBy.Format("2006-01-02")
	}
	return resp
}

func newOutletResponse(outlet *database.Outlet, articleCount int) outletResponse {
	return outletResponse{
		ID:              outlet.ID,
		Domain:          outlet.DomainPattern,
		Name:            outlet.Name,
		NameEN:          outlet.NameEN,
		Type:            outlet.Type,
		CredibilityTier: outlet.CredibilityTier,
		Language:        outlet.Language,
		Notes:           outlet.Notes,
		ArticleCount:    articleCount,
		CreatedAt:       outlet.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
