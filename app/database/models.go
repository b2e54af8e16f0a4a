package database

import (
	"time"
)

// Article represents a translated article record in the database.
// ChineseText is never empty; EnglishText and Summary are set only after a
// successful translation.
type Article struct {
	ID           string
	URL          string
	ChineseText  string
	EnglishText  string
	Summary      string
	Title        string
	TitleEN      string
	SourceName   string // source name as scraped from the page
	SourceNameEN string
	Author       string
	PubDate      *time.Time
	Notes        string
	Highlights   []Highlight
	OutletID     *string
	ProjectID    *string // nil means the unfiled bucket
	CreatedAt    time.Time
}

// Highlight is a reader-marked span of article text
type Highlight struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Project represents a research project (client investigation)
type Project struct {
	ID           string
	Name         string
	ClientNameCN string
	ClientNameEN string
	Industry     string
	Status       string
	Notes        string
	DueBy        *time.Time
	CreatedAt    time.Time
}

// Outlet represents a tracked source outlet, matched to articles by URL domain
type Outlet struct {
	ID              string
	DomainPattern   string
	Name            string
	NameEN          string
	Type            string
	CredibilityTier string
	Language        string
	Notes           string
	CreatedAt       time.Time
}

// ArticleEntity is a cached per-article entity extraction result. The content
// hash ties the cache to the exact text it was extracted from, so redoing a
// translation invalidates it.
type ArticleEntity struct {
	ArticleID   string
	Name        string
	Type        string
	Mentions    int
	ContentHash string
	ExtractedAt time.Time
}

// Project status values
const (
	ProjectStatusActive  = "active"
	ProjectStatusPending = "pending"
	ProjectStatusClosed  = "closed"
)
