package llm

import (
	"context"
	"fmt"
)

// Entity is one named entity extracted from an article
type Entity struct {
	Name     string `json:"entity"`
	Type     string `json:"type"`
	Mentions int    `json:"mentions"`
}

// Entity type values the extraction prompt asks for
const (
	EntityTypePerson       = "person"
	EntityTypeCompany      = "company"
	EntityTypeOrganization = "organization"
	EntityTypeGovernment   = "government"
	EntityTypeLocation     = "location"
	EntityTypeRegulation   = "regulation"
	EntityTypeOther        = "other"
)

// Service is the LLM boundary the pipeline depends on. Implementations are
// blocking, possibly slow, and must enforce their own timeout.
type Service interface {
	// Translate renders Chinese source text into English. The input is never
	// empty; an empty result is an error.
	Translate(ctx context.Context, chineseText string) (string, error)
	// Summarize produces a structured executive summary of translated text
	Summarize(ctx context.Context, englishText string) (string, error)
	// ExtractEntities pulls named entities with per-article mention counts
	// out of article text. An empty result is valid.
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
}

// TranslationError reports a failed translation or summarization: the
// upstream call errored, timed out, or returned empty output. The operation
// produced nothing usable and can be retried as a whole.
type TranslationError struct {
	Stage string // "translate" or "summarize"
	Err   error
}

func (e *TranslationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return e.Stage + ": empty response from LLM service"
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
