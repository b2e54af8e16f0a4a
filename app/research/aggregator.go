package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/sinodesk/sinodesk/app/database"
	"github.com/sinodesk/sinodesk/app/llm"
)

// EntityCount is one aggregated entity across a project's articles
type EntityCount struct {
	Name  string `json:"entity"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Aggregator recomputes the entity view of a project from its current article
// set. Per-article extractions are cached by content hash to avoid redundant
// LLM calls; the aggregate itself is always derived fresh, so concurrent
// aggregations of the same project cannot corrupt anything.
type Aggregator struct {
	svc   llm.Service
	cache database.EntityCacheRepository
}

// NewAggregator creates an entity aggregator
func NewAggregator(svc llm.Service, cache database.EntityCacheRepository) *Aggregator {
	return &Aggregator{svc: svc, cache: cache}
}

// Aggregate extracts entities per article and merges them across the set.
// Result order: descending total mentions, ties broken by first appearance
// over the chronological article order. An article whose extraction fails is
// skipped; one bad article never blocks the project view.
func (a *Aggregator) Aggregate(ctx context.Context, articles []database.Article) ([]EntityCount, error) {
	type group struct {
		EntityCount
		firstSeen int
	}

	groups := make(map[string]*group)
	order := 0

	for _, article := range Timeline(articles) {
		entities, err := a.articleEntities(ctx, article)
		if err != nil {
			slog.Warn("Entity extraction failed, excluding article from aggregate",
				"article_id", article.ID, "error", err)
			continue
		}

		for _, entity := range entities {
			key := NormalizeEntityName(entity.Name)
			if key == "" {
				continue
			}
			mentions := entity.Mentions
			if mentions < 1 {
				mentions = 1
			}

			if existing, ok := groups[key]; ok {
				existing.Count += mentions
				continue
			}
			groups[key] = &group{
				EntityCount: EntityCount{
					Name:  strings.TrimSpace(entity.Name),
					Type:  entity.Type,
					Count: mentions,
				},
				firstSeen: order,
			}
			order++
		}
	}

	result := make([]*group, 0, len(groups))
	for _, g := range groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].firstSeen < result[j].firstSeen
	})

	counts := make([]EntityCount, len(result))
	for i, g := range result {
		counts[i] = g.EntityCount
	}
	return counts, nil
}

// articleEntities returns the entities of one article, from cache when the
// article text is unchanged since the last extraction.
func (a *Aggregator) articleEntities(ctx context.Context, article database.Article) ([]llm.Entity, error) {
	text := entityText(article)
	if text == "" {
		return nil, nil
	}
	hash := ContentHash(text)

	cached, err := a.cache.GetForArticle(article.ID, hash)
	if err != nil {
		slog.Warn("Entity cache lookup failed", "article_id", article.ID, "error", err)
	}
	if len(cached) > 0 {
		entities := make([]llm.Entity, len(cached))
		for i, c := range cached {
			entities[i] = llm.Entity{Name: c.Name, Type: c.Type, Mentions: c.Mentions}
		}
		return entities, nil
	}

	entities, err := a.svc.ExtractEntities(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract entities: %w", err)
	}

	cacheRows := make([]database.ArticleEntity, len(entities))
	for i, e := range entities {
		cacheRows[i] = database.ArticleEntity{
			ArticleID: article.ID,
			Name:      e.Name,
			Type:      e.Type,
			Mentions:  e.Mentions,
		}
	}
	if err := a.cache.Replace(article.ID, hash, cacheRows); err != nil {
		slog.Warn("Failed to cache extracted entities", "article_id", article.ID, "error", err)
	}

	return entities, nil
}

// entityText picks the text entities are extracted from: the executive
// summary when present (it already names entities bilingually), else the
// translation, else the original.
func entityText(article database.Article) string {
	if article.Summary != "" {
		return article.Summary
	}
	if article.EnglishText != "" {
		return article.EnglishText
	}
	return article.ChineseText
}

// NormalizeEntityName produces the grouping key for an entity name:
// full-width characters folded, case-insensitive, trimmed.
func NormalizeEntityName(name string) string {
	folded := width.Fold.String(name)
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

// ContentHash identifies the exact text an extraction was computed from
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
