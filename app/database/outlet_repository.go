package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Outlets handles database operations for tracked source outlets
type Outlets struct {
	db *DB
}

var _ OutletRepository = (*Outlets)(nil)

// NewOutlets creates a new outlet repository
func NewOutlets(db *DB) *Outlets {
	return &Outlets{db: db}
}

// Insert stores a new outlet
func (r *Outlets) Insert(outlet *Outlet) error {
	_, err := r.db.Exec(`
		INSERT INTO outlets (id, domain_pattern, name, name_en, type, credibility_tier, language, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, outlet.ID, outlet.DomainPattern, outlet.Name, outlet.NameEN, outlet.Type,
		outlet.CredibilityTier, outlet.Language, outlet.Notes,
		outlet.CreatedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert outlet: %w", err)
	}

	return nil
}

// Get returns a single outlet by ID, or nil if not found
func (r *Outlets) Get(id string) (*Outlet, error) {
	row := r.db.QueryRow(`
		SELECT id, domain_pattern, name, name_en, type, credibility_tier, language, notes, created_at
		FROM outlets WHERE id = ?
	`, id)

	outlet, err := scanOutlet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outlet: %w", err)
	}
	return outlet, nil
}

// List returns all outlets in creation order, which the matcher relies on for
// deterministic tie-breaking.
func (r *Outlets) List() ([]Outlet, error) {
	rows, err := r.db.Query(`
		SELECT id, domain_pattern, name, name_en, type, credibility_tier, language, notes, created_at
		FROM outlets
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outlets: %w", err)
	}
	defer rows.Close()

	var outlets []Outlet
	for rows.Next() {
		outlet, err := scanOutlet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outlet row: %w", err)
		}
		outlets = append(outlets, *outlet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outlet rows: %w", err)
	}

	return outlets, nil
}

// Update replaces the editable fields of an outlet
func (r *Outlets) Update(outlet *Outlet) error {
	result, err := r.db.Exec(`
		UPDATE outlets
		SET domain_pattern = ?, name = ?, name_en = ?, type = ?, credibility_tier = ?, language = ?, notes = ?
		WHERE id = ?
	`, outlet.DomainPattern, outlet.Name, outlet.NameEN, outlet.Type,
		outlet.CredibilityTier, outlet.Language, outlet.Notes, outlet.ID)
	if err != nil {
		return fmt.Errorf("failed to update outlet: %w", err)
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

// Delete removes an outlet and clears references to it from articles
func (r *Outlets) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE articles SET outlet_id = NULL WHERE outlet_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear outlet references: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM outlets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete outlet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outlet deletion: %w", err)
	}

	return nil
}

// UpsertByDomain inserts an outlet, or updates the existing record with the
// same domain pattern. Used to register the seed file at startup.
func (r *Outlets) UpsertByDomain(outlet *Outlet) error {
	_, err := r.db.Exec(`
		INSERT INTO outlets (id, domain_pattern, name, name_en, type, credibility_tier, language, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (domain_pattern) DO UPDATE SET
			name = excluded.name,
			name_en = excluded.name_en,
			type = excluded.type,
			credibility_tier = excluded.credibility_tier,
			language = excluded.language,
			notes = excluded.notes
	`, outlet.ID, outlet.DomainPattern, outlet.Name, outlet.NameEN, outlet.Type,
		outlet.CredibilityTier, outlet.Language, outlet.Notes,
		outlet.CreatedAt.UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to upsert outlet: %w", err)
	}

	return nil
}

// GetArticleCounts returns the number of articles per outlet
func (r *Outlets) GetArticleCounts() (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT outlet_id, COUNT(*) FROM articles
		WHERE outlet_id IS NOT NULL
		GROUP BY outlet_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outlet articles: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outletID string
		var count int
		if err := rows.Scan(&outletID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[outletID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate count rows: %w", err)
	}

	return counts, nil
}

// GetCount returns the total number of outlets
func (r *Outlets) GetCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM outlets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count outlets: %w", err)
	}
	return count, nil
}

func scanOutlet(row rowScanner) (*Outlet, error) {
	var outlet Outlet
	var createdAt string

	err := row.Scan(&outlet.ID, &outlet.DomainPattern, &outlet.Name, &outlet.NameEN,
		&outlet.Type, &outlet.CredibilityTier, &outlet.Language, &outlet.Notes,
		&createdAt)
	if err != nil {
		return nil, err
	}

	if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
		outlet.CreatedAt = parsed
	}

	return &outlet, nil
}
