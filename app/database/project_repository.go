package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Projects handles database operations for project records
type Projects struct {
	db *DB
}

var _ ProjectRepository = (*Projects)(nil)

// NewProjects creates a new project repository
func NewProjects(db *DB) *Projects {
	return &Projects{db: db}
}

// Insert stores a new project
func (r *Projects) Insert(project *Project) error {
	_, err := r.db.Exec(`
		INSERT INTO projects (id, name, client_name_cn, client_name_en, industry, status, notes, due_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, project.ID, project.Name, project.ClientNameCN, project.ClientNameEN,
		project.Industry, project.Status, project.Notes, dateToNull(project.DueBy),
		project.CreatedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// Get returns a single project by ID, or nil if not found
func (r *Projects) Get(id string) (*Project, error) {
	row := r.db.QueryRow(`
		SELECT id, name, client_name_cn, client_name_en, industry, status, notes, due_by, created_at
		FROM projects WHERE id = ?
	`, id)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// List returns all projects, due soonest first, then newest
func (r *Projects) List() ([]Project, error) {
	rows, err := r.db.Query(`
		SELECT id, name, client_name_cn, client_name_en, industry, status, notes, due_by, created_at
		FROM projects
		ORDER BY CASE WHEN due_by IS NULL THEN 1 ELSE 0 END, due_by ASC, created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project rows: %w", err)
	}

	return projects, nil
}

// Update replaces the editable fields of a project
func (r *Projects) Update(project *Project) error {
	result, err := r.db.Exec(`
		UPDATE projects
		SET name = ?, client_name_cn = ?, client_name_en = ?, industry = ?, status = ?, notes = ?, due_by = ?
		WHERE id = ?
	`, project.Name, project.ClientNameCN, project.ClientNameEN, project.Industry,
		project.Status, project.Notes, dateToNull(project.DueBy), project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
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

// Delete removes a project. Its articles are moved to the unfiled bucket
// first so no article is left pointing at a deleted project.
func (r *Projects) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE articles SET project_id = NULL WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("failed to unfile project articles: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project deletion: %w", err)
	}

	return nil
}

// GetArticleCounts returns the number of articles per project
func (r *Projects) GetArticleCounts() (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT project_id, COUNT(*) FROM articles
		WHERE project_id IS NOT NULL
		GROUP BY project_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count project articles: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var projectID string
		var count int
		if err := rows.Scan(&projectID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[projectID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate count rows: %w", err)
	}

	return counts, nil
}

// GetCount returns the total number of projects
func (r *Projects) GetCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

func scanProject(row rowScanner) (*Project, error) {
	var project Project
	var dueBy sql.NullString
	var createdAt string

	err := row.Scan(&project.ID, &project.Name, &project.ClientNameCN,
		&project.ClientNameEN, &project.Industry, &project.Status,
		&project.Notes, &dueBy, &createdAt)
	if err != nil {
		return nil, err
	}

	if dueBy.Valid && dueBy.String != "" {
		if parsed, err := time.Parse(dateLayout, dueBy.String[:min(len(dueBy.String), 10)]); err == nil {
			project.DueBy = &parsed
		}
	}
	if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
		project.CreatedAt = parsed
	}

	return &project, nil
}
