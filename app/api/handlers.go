package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sinodesk/sinodesk/app/database"
	"github.com/sinodesk/sinodesk/app/fetcher"
	"github.com/sinodesk/sinodesk/app/llm"
	"github.com/sinodesk/sinodesk/app/pipeline"
	"github.com/sinodesk/sinodesk/app/research"
)

// Handler handles HTTP requests for the research desk API
type Handler struct {
	articles   database.ArticleRepository
	projects   database.ProjectRepository
	outlets    database.OutletRepository
	processor  *pipeline.Processor
	aggregator *research.Aggregator
	version    string
}

// NewHandler creates a new API handler
func NewHandler(articles database.ArticleRepository, projects database.ProjectRepository,
	outlets database.OutletRepository, processor *pipeline.Processor,
	aggregator *research.Aggregator, version string) *Handler {
	return &Handler{
		articles:   articles,
		projects:   projects,
		outlets:    outlets,
		processor:  processor,
		aggregator: aggregator,
		version:    version,
	}
}

// renderError maps pipeline errors onto HTTP statuses. Fetch and input
// problems are the client's to fix; LLM failures are upstream failures.
func renderError(c *gin.Context, err error) {
	var fetchErr *fetcher.FetchError
	var translationErr *llm.TranslationError

	switch {
	case errors.Is(err, pipeline.ErrNoInput), errors.Is(err, pipeline.ErrNoContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch URL: " + fetchErr.Error()})
	case errors.As(err, &translationErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Translation failed: " + translationErr.Error()})
	case errors.Is(err, research.ErrInvalidStyle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// TranslateArticle runs the pipeline for a new article from pasted text or a URL
func (h *Handler) TranslateArticle(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Please try again."})
		return
	}

	article, err := h.processor.Translate(c.Request.Context(), pipeline.TranslateRequest{
		Text:      req.Text,
		URL:       req.URL,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newArticleResponse(article))
}

// RetranslateArticle redoes the translation of a stored article
func (h *Handler) RetranslateArticle(c *gin.Context) {
	article, err := h.processor.Retranslate(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(article))
}

// ListArticles returns all saved articles
func (h *Handler) ListArticles(c *gin.Context) {
	articles, err := h.articles.List()
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summariesOf(articles))
}

// ListUnfiledArticles returns articles not assigned to any project
func (h *Handler) ListUnfiledArticles(c *gin.Context) {
	articles, err := h.articles.ListUnfiled()
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summariesOf(articles))
}

// SearchArticles searches titles, summaries, and article text
func (h *Handler) SearchArticles(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, []articleSummaryResponse{})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	articles, err := h.articles.Search(query, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summariesOf(articles))
}

// CheckDuplicateURL reports whether an article was already saved from a URL
func (h *Handler) CheckDuplicateURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	article, err := h.articles.GetByURL(url)
	if err != nil {
		renderError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exists":     true,
		"id":         article.ID,
		"title":      article.Title,
		"created_at": article.CreatedAt.Format(time.RFC3339),
	})
}

// GetArticle returns one article in full
func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.articles.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusOK, newArticleResponse(article))
}

// UpdateArticleAnnotations replaces an article's notes and highlights
func (h *Handler) UpdateArticleAnnotations(c *gin.Context) {
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.articles.UpdateAnnotations(c.Param("id"), req.Notes, req.Highlights); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RenameArticle sets an article's working title
func (h *Handler) RenameArticle(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.articles.UpdateTitle(c.Param("id"), req.Title); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UpdateArticleMetadata applies a partial manual metadata edit
func (h *Handler) UpdateArticleMetadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := h.articles.UpdateMetadata(c.Param("id"), database.ArticleMetadataUpdate{
		Title:        req.Title,
		TitleEN:      req.TitleEN,
		SourceName:   req.SourceName,
		SourceNameEN: req.SourceNameEN,
		Author:       req.Author,
		PubDate:      req.PubDate,
		URL:          req.URL,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			renderError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AssignArticleProject files an article into a project or back to unfiled
func (h *Handler) AssignArticleProject(c *gin.Context) {
	var req assignProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ProjectID != nil {
		project, err := h.projects.Get(*req.ProjectID)
		if err != nil {
			renderError(c, err)
			return
		}
		if project == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown project"})
			return
		}
	}

	if err := h.articles.SetProject(c.Param("id"), req.ProjectID); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AssignArticleOutlet assigns or clears an article's tracked outlet
func (h *Handler) AssignArticleOutlet(c *gin.Context) {
	var req assignOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.OutletID != nil {
		outlet, err := h.outlets.Get(*req.OutletID)
		if err != nil {
			renderError(c, err)
			return
		}
		if outlet == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown outlet"})
			return
		}
	}

	if err := h.articles.SetOutlet(c.Param("id"), req.OutletID); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteArticle removes an article
func (h *Handler) DeleteArticle(c *gin.Context) {
	if err := h.articles.Delete(c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetArticleCitation returns a citation string for the article
func (h *Handler) GetArticleCitation(c *gin.Context) {
	article, err := h.articles.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	outlet, err := h.articleOutlet(article)
	if err != nil {
		renderError(c, err)
		return
	}

	style := citationStyle(c)
	export, err := research.BuildArticleExport(article, outlet, style, time.Now().UTC())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"style":    string(style),
		"citation": export.Citations[0],
	})
}

// ExportArticle returns the report payload for one article
func (h *Handler) ExportArticle(c *gin.Context) {
	article, err := h.articles.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	outlet, err := h.articleOutlet(article)
	if err != nil {
		renderError(c, err)
		return
	}

	export, err := research.BuildArticleExport(article, outlet, citationStyle(c), time.Now().UTC())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, export)
}

func (h *Handler) articleOutlet(article *database.Article) (*database.Outlet, error) {
	if article.OutletID == nil {
		return nil, nil
	}
	return h.outlets.Get(*article.OutletID)
}

// citationStyle reads the requested citation style, defaulting to inline.
// Unknown styles are passed through so formatting rejects them explicitly.
func citationStyle(c *gin.Context) research.Style {
	if raw := c.Query("style"); raw != "" {
		return research.Style(raw)
	}
	return research.StyleInline
}

func summariesOf(articles []database.Article) []articleSummaryResponse {
	summaries := make([]articleSummaryResponse, 0, len(articles))
	for i := range articles {
		summaries = append(summaries, newArticleSummary(&articles[i]))
	}
	return summaries
}
