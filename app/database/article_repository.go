package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Articles handles database operations for article records
type Articles struct {
	db *DB
}

var _ ArticleRepository = (*Articles)(nil)

// NewArticles creates a new article repository
func NewArticles(db *DB) *Articles {
	return &Articles{db: db}
}

const articleColumns = `id, url, chinese_text, english_text, summary, title, title_en,
	source_name, source_name_en, author, pub_date, notes, highlights,
	outlet_id, project_id, created_at`

// Insert stores a new article
func (r *Articles) Insert(article *Article) error {
	highlightsJSON, err := json.Marshal(article.Highlights)
	if err != nil {
		return fmt.Errorf("failed to marshal highlights: %w", err)
	}
	if article.Highlights == nil {
		highlightsJSON = []byte("[]")
	}

	_, err = r.db.Exec(`
		INSERT INTO articles (
			id, url, chinese_text, english_text, summary, title, title_en,
			source_name, source_name_en, author, pub_date, notes, highlights,
			outlet_id, project_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.ID, article.URL, article.ChineseText, article.EnglishText,
		article.Summary, article.Title, article.TitleEN, article.SourceName,
		article.SourceNameEN, article.Author, dateToNull(article.PubDate),
		article.Notes, string(highlightsJSON), article.OutletID, article.ProjectID,
		article.CreatedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// Get returns a single article by ID, or nil if not found
func (r *Articles) Get(id string) (*Article, error) {
	row := r.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// GetByURL returns the first article saved from the given URL, or nil
func (r *Articles) GetByURL(url string) (*Article, error) {
	row := r.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE url = ? AND url != '' LIMIT 1`, url)
	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by URL: %w", err)
	}
	return article, nil
}

// List returns all articles, newest first
func (r *Articles) List() ([]Article, error) {
	return r.query(`SELECT ` + articleColumns + ` FROM articles ORDER BY created_at DESC`)
}

// ListUnfiled returns articles not assigned to any project, newest first
func (r *Articles) ListUnfiled() ([]Article, error) {
	return r.query(`SELECT ` + articleColumns + ` FROM articles WHERE project_id IS NULL ORDER BY created_at DESC`)
}

// ListByProject returns all articles in a project, oldest first
func (r *Articles) ListByProject(projectID string) ([]Article, error) {
	return r.query(`SELECT `+articleColumns+` FROM articles WHERE project_id = ? ORDER BY created_at ASC`, projectID)
}

// Search returns articles matching the query in title, summary, or text
func (r *Articles) Search(query string, limit int) ([]Article, error) {
	like := "%" + query + "%"
	return r.query(`
		SELECT `+articleColumns+` FROM articles
		WHERE title LIKE ? OR title_en LIKE ? OR summary LIKE ?
		   OR chinese_text LIKE ? OR english_text LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, like, like, like, like, like, limit)
}

// UpdateAnnotations replaces the notes and highlights of an article
func (r *Articles) UpdateAnnotations(id string, notes string, highlights []Highlight) error {
	if highlights == nil {
		highlights = []Highlight{}
	}
	highlightsJSON, err := json.Marshal(highlights)
	if err != nil {
		return fmt.Errorf("failed to marshal highlights: %w", err)
	}

	return r.exec(`UPDATE articles SET notes = ?, highlights = ? WHERE id = ?`,
		notes, string(highlightsJSON), id)
}

// UpdateTitle renames an article
func (r *Articles) UpdateTitle(id string, title string) error {
	return r.exec(`UPDATE articles SET title = ? WHERE id = ?`, title, id)
}

// UpdateTranslation replaces the translation and summary after a redo
func (r *Articles) UpdateTranslation(id string, englishText string, summary string) error {
	return r.exec(`UPDATE articles SET english_text = ?, summary = ? WHERE id = ?`,
		englishText, summary, id)
}

// UpdateMetadata applies a partial metadata edit
func (r *Articles) UpdateMetadata(id string, update ArticleMetadataUpdate) error {
	var sets []string
	var args []interface{}

	set := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, strings.TrimSpace(*value))
		}
	}

	set("title", update.Title)
	set("title_en", update.TitleEN)
	set("source_name", update.SourceName)
	set("source_name_en", update.SourceNameEN)
	set("author", update.Author)
	set("url", update.URL)

	if update.PubDate != nil {
		trimmed := strings.TrimSpace(*update.PubDate)
		if trimmed == "" {
			sets = append(sets, "pub_date = NULL")
		} else {
			if _, err := time.Parse(dateLayout, trimmed); err != nil {
				return fmt.Errorf("invalid pub_date %q: %w", trimmed, err)
			}
			sets = append(sets, "pub_date = ?")
			args = append(args, trimmed)
		}
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	return r.exec(`UPDATE articles SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
}

// SetProject moves an article into a project, or to unfiled when nil
func (r *Articles) SetProject(id string, projectID *string) error {
	return r.exec(`UPDATE articles SET project_id = ? WHERE id = ?`, projectID, id)
}

// SetOutlet assigns a tracked outlet to an article, or clears it when nil
func (r *Articles) SetOutlet(id string, outletID *string) error {
	return r.exec(`UPDATE articles SET outlet_id = ? WHERE id = ?`, outletID, id)
}

// Delete removes an article and its cached entities
func (r *Articles) Delete(id string) error {
	return r.exec(`DELETE FROM articles WHERE id = ?`, id)
}

// GetCount returns the total number of articles
func (r *Articles) GetCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *Articles) exec(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Articles) query(query string, args ...interface{}) ([]Article, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate article rows: %w", err)
	}

	return articles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var article Article
	var pubDate, outletID, projectID sql.NullString
	var highlightsJSON, createdAt string

	err := row.Scan(
		&article.ID, &article.URL, &article.ChineseText, &article.EnglishText,
		&article.Summary, &article.Title, &article.TitleEN, &article.SourceName,
		&article.SourceNameEN, &article.Author, &pubDate, &article.Notes,
		&highlightsJSON, &outletID, &projectID, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if pubDate.Valid && pubDate.String != "" {
		if parsed, err := time.Parse(dateLayout, pubDate.String[:min(len(pubDate.String), 10)]); err == nil {
			article.PubDate = &parsed
		}
	}
	if outletID.Valid {
		article.OutletID = &outletID.String
	}
	if projectID.Valid {
		article.ProjectID = &projectID.String
	}
	if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
		article.CreatedAt = parsed
	}

	article.Highlights = []Highlight{}
	if highlightsJSON != "" {
		if err := json.Unmarshal([]byte(highlightsJSON), &article.Highlights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal highlights: %w", err)
		}
	}

	return &article, nil
}

func dateToNull(date *time.Time) interface{} {
	if date == nil {
		return nil
	}
	return date.Format(dateLayout)
}
