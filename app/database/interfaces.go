package database

// ArticleMetadataUpdate carries a partial metadata edit. Nil fields are left
// untouched.
type ArticleMetadataUpdate struct {
	Title        *string
	TitleEN      *string
	SourceName   *string
	SourceNameEN *string
	Author       *string
	PubDate      *string // "YYYY-MM-DD" or "" to clear
	URL          *string
}

type ArticleRepository interface {
	Insert(article *Article) error
	Get(id string) (*Article, error)
	GetByURL(url string) (*Article, error)
	List() ([]Article, error)
	ListUnfiled() ([]Article, error)
	ListByProject(projectID string) ([]Article, error)
	Search(query string, limit int) ([]Article, error)

	UpdateAnnotations(id string, notes string, highlights []Highlight) error
	UpdateTitle(id string, title string) error
	UpdateTranslation(id string, englishText string, summary string) error
	UpdateMetadata(id string, update ArticleMetadataUpdate) error
	SetProject(id string, projectID *string) error
	SetOutlet(id string, outletID *string) error
	Delete(id string) error

	GetCount() (int, error)
}

type ProjectRepository interface {
	Insert(project *Project) error
	Get(id string) (*Project, error)
	List() ([]Project, error)
	Update(project *Project) error
	Delete(id string) error

	GetArticleCounts() (map[string]int, error)
	GetCount() (int, error)
}

type OutletRepository interface {
	Insert(outlet *Outlet) error
	Get(id string) (*Outlet, error)
	List() ([]Outlet, error)
	Update(outlet *Outlet) error
	Delete(id string) error
	UpsertByDomain(outlet *Outlet) error

	GetArticleCounts() (map[string]int, error)
	GetCount() (int, error)
}

type EntityCacheRepository interface {
	// GetForArticle returns cached entities for the article, but only if they
	// were extracted from text with the given content hash.
	GetForArticle(articleID string, contentHash string) ([]ArticleEntity, error)
	// Replace drops any cached entities for the article and stores the new set.
	Replace(articleID string, contentHash string, entities []ArticleEntity) error
}
