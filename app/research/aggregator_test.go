package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sinodesk/sinodesk/app/database"
	"github.com/sinodesk/sinodesk/app/llm"
)

// fakeExtractor returns canned entity sets keyed by article text
type fakeExtractor struct {
	entities map[string][]llm.Entity
	err      map[string]error
	calls    int
}

func (f *fakeExtractor) Translate(ctx context.Context, text string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeExtractor) Summarize(ctx context.Context, text string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeExtractor) ExtractEntities(ctx context.Context, text string) ([]llm.Entity, error) {
	f.calls++
	if err := f.err[text]; err != nil {
		return nil, err
	}
	return f.entities[text], nil
}

// memoryCache is an in-memory EntityCacheRepository
type memoryCache struct {
	entries map[string][]database.ArticleEntity
	hashes  map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string][]database.ArticleEntity),
		hashes:  make(map[string]string),
	}
}

func (m *memoryCache) GetForArticle(articleID string, contentHash string) ([]database.ArticleEntity, error) {
	if m.hashes[articleID] != contentHash {
		return nil, nil
	}
	return m.entries[articleID], nil
}

func (m *memoryCache) Replace(articleID string, contentHash string, entities []database.ArticleEntity) error {
	m.entries[articleID] = entities
	m.hashes[articleID] = contentHash
	return nil
}

func aggArticle(id, summary string, pubDate string) database.Article {
	article := database.Article{
		ID:        id,
		Summary:   summary,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if pubDate != "" {
		article.PubDate = date(pubDate)
	}
	return article
}

func TestAggregateSumsAcrossArticles(t *testing.T) {
	svc := &fakeExtractor{entities: map[string][]llm.Entity{
		"summary-a": {
			{Name: "Tencent (腾讯)", Type: llm.EntityTypeCompany, Mentions: 3},
			{Name: "SAMR", Type: llm.EntityTypeGovernment, Mentions: 4},
		},
		"summary-b": {
			{Name: "Tencent (腾讯)", Type: llm.EntityTypeCompany, Mentions: 2},
		},
	}}
	agg := NewAggregator(svc, newMemoryCache())

	counts, err := agg.Aggregate(context.Background(), []database.Article{
		aggArticle("a", "summary-a", "2024-01-05"),
		aggArticle("b", "summary-b", "2024-01-20"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(counts))
	}
	if counts[0].Name != "Tencent (腾讯)" || counts[0].Count != 5 {
		t.Errorf("Expected Tencent with 5 total mentions first, got %+v", counts[0])
	}
	if counts[1].Name != "SAMR" || counts[1].Count != 4 {
		t.Errorf("Expected SAMR with 4 mentions second, got %+v", counts[1])
	}
}

func TestAggregateSkipsFailedArticles(t *testing.T) {
	svc := &fakeExtractor{
		entities: map[string][]llm.Entity{
			"good": {{Name: "Alibaba", Type: llm.EntityTypeCompany, Mentions: 2}},
		},
		err: map[string]error{"bad": errors.New("upstream error")},
	}
	agg := NewAggregator(svc, newMemoryCache())

	counts, err := agg.Aggregate(context.Background(), []database.Article{
		aggArticle("a", "good", "2024-01-05"),
		aggArticle("b", "bad", "2024-01-20"),
	})
	if err != nil {
		t.Fatalf("Expected partial result, got error: %v", err)
	}
	if len(counts) != 1 || counts[0].Name != "Alibaba" {
		t.Errorf("Expected the good article's entities only, got %+v", counts)
	}
}

func TestAggregateUsesCache(t *testing.T) {
	svc := &fakeExtractor{entities: map[string][]llm.Entity{
		"summary": {{Name: "Baidu", Type: llm.EntityTypeCompany, Mentions: 1}},
	}}
	agg := NewAggregator(svc, newMemoryCache())
	articles := []database.Article{aggArticle("a", "summary", "2024-01-05")}

	if _, err := agg.Aggregate(context.Background(), articles); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := agg.Aggregate(context.Background(), articles); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if svc.calls != 1 {
		t.Errorf("Expected 1 extraction call with a warm cache, got %d", svc.calls)
	}
}

func TestAggregateCacheInvalidatedByTextChange(t *testing.T) {
	svc := &fakeExtractor{entities: map[string][]llm.Entity{
		"before": {{Name: "Baidu", Type: llm.EntityTypeCompany, Mentions: 1}},
		"after":  {{Name: "Meituan", Type: llm.EntityTypeCompany, Mentions: 1}},
	}}
	agg := NewAggregator(svc, newMemoryCache())

	if _, err := agg.Aggregate(context.Background(), []database.Article{aggArticle("a", "before", "")}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	counts, err := agg.Aggregate(context.Background(), []database.Article{aggArticle("a", "after", "")})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if svc.calls != 2 {
		t.Errorf("Expected a fresh extraction after the text changed, got %d calls", svc.calls)
	}
	if len(counts) != 1 || counts[0].Name != "Meituan" {
		t.Errorf("Expected entities from the new text, got %+v", counts)
	}
}

func TestAggregateNormalizesEntityNames(t *testing.T) {
	svc := &fakeExtractor{entities: map[string][]llm.Entity{
		"a": {{Name: "Tencent", Type: llm.EntityTypeCompany, Mentions: 1}},
		"b": {{Name: "ＴＥＮＣＥＮＴ", Type: llm.EntityTypeCompany, Mentions: 2}},
	}}
	agg := NewAggregator(svc, newMemoryCache())

	counts, err := agg.Aggregate(context.Background(), []database.Article{
		aggArticle("a", "a", "2024-01-05"),
		aggArticle("b", "b", "2024-01-20"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != 3 {
		t.Errorf("Expected full-width and case variants merged into one entity, got %+v", counts)
	}
}

func TestAggregateTiesBrokenByFirstAppearance(t *testing.T) {
	svc := &fakeExtractor{entities: map[string][]llm.Entity{
		"summary": {
			{Name: "First", Type: llm.EntityTypeOther, Mentions: 2},
			{Name: "Second", Type: llm.EntityTypeOther, Mentions: 2},
		},
	}}
	agg := NewAggregator(svc, newMemoryCache())

	counts, err := agg.Aggregate(context.Background(), []database.Article{aggArticle("a", "summary", "")})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if counts[0].Name != "First" || counts[1].Name != "Second" {
		t.Errorf("Expected first-appearance tiebreak, got %+v", counts)
	}
}

func TestNormalizeEntityName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Tencent", "tencent"},
		{"ＴＥＮＣＥＮＴ", "tencent"},
		{"  Zhang  Wei  ", "zhang wei"},
		{"腾讯", "腾讯"},
	}

	for _, tt := range tests {
		if got := NormalizeEntityName(tt.input); got != tt.expected {
			t.Errorf("NormalizeEntityName('%s'): expected '%s', got '%s'", tt.input, tt.expected, got)
		}
	}
}
