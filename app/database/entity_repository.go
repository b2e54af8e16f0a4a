package database

import (
	"fmt"
	"time"
)

// Entities handles the per-article entity extraction cache
type Entities struct {
	db *DB
}

var _ EntityCacheRepository = (*Entities)(nil)

// NewEntities creates a new entity cache repository
func NewEntities(db *DB) *Entities {
	return &Entities{db: db}
}

// GetForArticle returns cached entities for an article if the cache was built
// from text with the given content hash. A hash mismatch (article re-translated
// or summary regenerated) returns nil, forcing re-extraction.
func (r *Entities) GetForArticle(articleID string, contentHash string) ([]ArticleEntity, error) {
	rows, err := r.db.Query(`
		SELECT article_id, name, type, mentions, content_hash, extracted_at
		FROM article_entities
		WHERE article_id = ? AND content_hash = ?
		ORDER BY rowid ASC
	`, articleID, contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached entities: %w", err)
	}
	defer rows.Close()

	var entities []ArticleEntity
	for rows.Next() {
		var entity ArticleEntity
		var extractedAt string
		if err := rows.Scan(&entity.ArticleID, &entity.Name, &entity.Type,
			&entity.Mentions, &entity.ContentHash, &extractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, extractedAt); err == nil {
			entity.ExtractedAt = parsed
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entity rows: %w", err)
	}

	return entities, nil
}

// Replace drops any cached entities for the article and stores the new set
func (r *Entities) Replace(articleID string, contentHash string, entities []ArticleEntity) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM article_entities WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear cached entities: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, entity := range entities {
		_, err := tx.Exec(`
			INSERT INTO article_entities (article_id, name, type, mentions, content_hash, extracted_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, articleID, entity.Name, entity.Type, entity.Mentions, contentHash, now)
		if err != nil {
			return fmt.Errorf("failed to insert cached entity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entity cache: %w", err)
	}

	return nil
}
