package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sinodesk/sinodesk/app/database"
	"github.com/sinodesk/sinodesk/app/research"
)

var validProjectStatuses = map[string]bool{
	database.ProjectStatusActive:  true,
	database.ProjectStatusPending: true,
	database.ProjectStatusClosed:  true,
}

// ListProjects returns all projects with their article counts
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List()
	if err != nil {
		renderError(c, err)
		return
	}

	counts, err := h.projects.GetArticleCounts()
	if err != nil {
		renderError(c, err)
		return
	}

	responses := make([]projectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, newProjectResponse(&projects[i], counts[projects[i].ID]))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateProject creates a new research project
func (h *Handler) CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := projectFromRequest(&req, &database.Project{
		ID:        uuid.NewString(),
		Status:    database.ProjectStatusActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if project.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	if err := h.projects.Insert(project); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project, 0))
}

// GetProject returns one project with its article count
func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	counts, err := h.projects.GetArticleCounts()
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProjectResponse(project, counts[project.ID]))
}

// UpdateProject replaces a project's profile fields
func (h *Handler) UpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	updated, err := projectFromRequest(&req, project)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if updated.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project name is required"})
		return
	}

	if err := h.projects.Update(updated); err != nil {
		renderError(c, err)
		return
	}

	counts, err := h.projects.GetArticleCounts()
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(updated, counts[updated.ID]))
}

// DeleteProject removes a project; its articles move back to unfiled
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListProjectArticles returns a project's articles in chronological order
func (h *Handler) ListProjectArticles(c *gin.Context) {
	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	articles, err := h.articles.ListByProject(project.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summariesOf(research.Timeline(articles)))
}

// GetProjectTimeline returns the chronological view of a project
func (h *Handler) GetProjectTimeline(c *gin.Context) {
	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	articles, err := h.articles.ListByProject(project.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	entries := make([]research.TimelineEntry, 0, len(articles))
	for _, article := range research.Timeline(articles) {
		entry := research.TimelineEntry{
			ArticleID: article.ID,
			Title:     article.Title,
		}
		if entry.Title == "" {
			entry.Title = article.URL
		}
		if article.PubDate != nil {
			entry.Date = article.PubDate.Format("2006-01-02")
		} else {
			entry.Date = article.CreatedAt.Format("2006-01-02")
			entry.Undated = true
		}
		entries = append(entries, entry)
	}
	c.JSON(http.StatusOK, entries)
}

// GetProjectEntities returns the aggregated entity counts across a project
func (h *Handler) GetProjectEntities(c *gin.Context) {
	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	articles, err := h.articles.ListByProject(project.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	entities, err := h.aggregator.Aggregate(c.Request.Context(), articles)
	if err != nil {
		renderError(c, err)
		return
	}
	if entities == nil {
		entities = []research.EntityCount{}
	}
	c.JSON(http.StatusOK, entities)
}

// ExportProject returns the full report payload for a project
func (h *Handler) ExportProject(c *gin.Context) {
	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	articles, err := h.articles.ListByProject(project.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	outletsByID, err := h.outletIndex()
	if err != nil {
		renderError(c, err)
		return
	}

	entities, err := h.aggregator.Aggregate(c.Request.Context(), articles)
	if err != nil {
		renderError(c, err)
		return
	}

	export, err := research.BuildProjectExport(project, articles, outletsByID,
		entities, citationStyle(c), time.Now().UTC())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, export)
}

// ListOutlets returns all tracked outlets with their article counts
func (h *Handler) ListOutlets(c *gin.Context) {
	outlets, err := h.outlets.List()
	if err != nil {
		renderError(c, err)
		return
	}

	counts, err := h.outlets.GetArticleCounts()
	if err != nil {
		renderError(c, err)
		return
	}

	responses := make([]outletResponse, 0, len(outlets))
	for i := range outlets {
		responses = append(responses, newOutletResponse(&outlets[i], counts[outlets[i].ID]))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateOutlet adds a tracked outlet
func (h *Handler) CreateOutlet(c *gin.Context) {
	var req outletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	outlet := outletFromRequest(&req, &database.Outlet{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	})
	if outlet.DomainPattern == "" || outlet.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Outlet domain and name are required"})
		return
	}

	if err := h.outlets.Insert(outlet); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newOutletResponse(outlet, 0))
}

// UpdateOutlet replaces an outlet's profile fields
func (h *Handler) UpdateOutlet(c *gin.Context) {
	var req outletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	outlet, err := h.outlets.Get(c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if outlet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	updated := outletFromRequest(&req, outlet)
	if updated.DomainPattern == "" || updated.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Outlet domain and name are required"})
		return
	}

	if err := h.outlets.Update(updated); err != nil {
		renderError(c, err)
		return
	}

	counts, err := h.outlets.GetArticleCounts()
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOutletResponse(updated, counts[updated.ID]))
}

// DeleteOutlet removes a tracked outlet; articles keep their scraped source name
func (h *Handler) DeleteOutlet(c *gin.Context) {
	if err := h.outlets.Delete(c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// HealthCheck returns the health status of the application
func (h *Handler) HealthCheck(c *gin.Context) {
	articleCount, err := h.articles.GetCount()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  h.version,
		"articles": articleCount,
	})
}

// GetStats returns overall database statistics
func (h *Handler) GetStats(c *gin.Context) {
	articleCount, err := h.articles.GetCount()
	if err != nil {
		renderError(c, err)
		return
	}
	projectCount, err := h.projects.GetCount()
	if err != nil {
		renderError(c, err)
		return
	}
	outletCount, err := h.outlets.GetCount()
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articleCount,
		"projects": projectCount,
		"outlets":  outletCount,
	})
}

func (h *Handler) outletIndex() (map[string]*database.Outlet, error) {
	outlets, err := h.outlets.List()
	if err != nil {
		return nil, err
	}
	index := make(map[string]*database.Outlet, len(outlets))
	for i := range outlets {
		index[outlets[i].ID] = &outlets[i]
	}
	return index, nil
}

// projectFromRequest applies a project request body on top of base, validating
// the status and due date.
func projectFromRequest(req *projectRequest, base *database.Project) (*database.Project, error) {
	project := *base
	project.Name = strings.TrimSpace(req.Name)
	project.ClientNameCN = strings.TrimSpace(req.ClientNameCN)
	project.ClientNameEN = strings.TrimSpace(req.ClientNameEN)
	project.Industry = strings.TrimSpace(req.Industry)
	project.Notes = req.Notes

	if status := strings.TrimSpace(req.Status); status != "" {
		if !validProjectStatuses[status] {
			return nil, errInvalidStatus(status)
		}
		project.Status = status
	}

	if dueBy := strings.TrimSpace(req.DueBy); dueBy != "" {
		parsed, err := time.Parse("2006-01-02", dueBy)
		if err != nil {
			return nil, errInvalidDate(dueBy)
		}
		project.DueBy = &parsed
	} else {
		project.DueBy = nil
	}

	return &project, nil
}

func outletFromRequest(req *outletRequest, base *database.Outlet) *database.Outlet {
	outlet := *base
	outlet.DomainPattern = strings.ToLower(strings.TrimSpace(req.Domain))
	outlet.Name = strings.TrimSpace(req.Name)
	outlet.NameEN = strings.TrimSpace(req.NameEN)
	outlet.Type = strings.TrimSpace(req.Type)
	outlet.CredibilityTier = strings.TrimSpace(req.CredibilityTier)
	outlet.Language = strings.TrimSpace(req.Language)
	outlet.Notes = req.Notes
	return &outlet
}

type requestError string

func (e requestError) Error() string { return string(e) }

func errInvalidStatus(status string) error {
	return requestError("invalid project status: " + status)
}

func errInvalidDate(date string) error {
	return requestError("invalid date, expected YYYY-MM-DD: " + date)
}
