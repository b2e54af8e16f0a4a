package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testArticle(id string) *Article {
	pubDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return &Article{
		ID:          id,
		URL:         "https://example.cn/news/" + id,
		ChineseText: "中文正文。",
		EnglishText: "English text.",
		Summary:     "OVERVIEW: summary.",
		Title:       "文章标题",
		SourceName:  "测试来源",
		Author:      "张伟",
		PubDate:     &pubDate,
		Highlights:  []Highlight{{Text: "关键句", Color: "yellow"}},
		CreatedAt:   time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC),
	}
}

func TestArticleInsertAndGet(t *testing.T) {
	repo := NewArticles(newTestDB(t))

	if err := repo.Insert(testArticle("a1")); err != nil {
		t.Fatalf("Failed to insert article: %v", err)
	}

	article, err := repo.Get("a1")
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if article == nil {
		t.Fatal("Expected article, got nil")
	}
	if article.Title != "文章标题" || article.ChineseText != "中文正文。" {
		t.Errorf("Unexpected article fields: %+v", article)
	}
	if article.PubDate == nil || article.PubDate.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("Expected pub date '2024-03-15', got %v", article.PubDate)
	}
	if len(article.Highlights) != 1 || article.Highlights[0].Color != "yellow" {
		t.Errorf("Expected highlights round-tripped, got %+v", article.Highlights)
	}
	if article.ProjectID != nil || article.OutletID != nil {
		t.Errorf("Expected nil project and outlet, got %+v", article)
	}
}

func TestArticleGetMissing(t *testing.T) {
	repo := NewArticles(newTestDB(t))

	article, err := repo.Get("missing")
	if err != nil {
		t.Fatalf("Expected no error for missing article, got: %v", err)
	}
	if article != nil {
		t.Errorf("Expected nil for missing article, got %+v", article)
	}
}

func TestArticleGetByURL(t *testing.T) {
	repo := NewArticles(newTestDB(t))
	repo.Insert(testArticle("a1"))

	article, err := repo.GetByURL("https://example.cn/news/a1")
	if err != nil {
		t.Fatalf("Failed to get by URL: %v", err)
	}
	if article == nil || article.ID != "a1" {
		t.Errorf("Expected article a1, got %+v", article)
	}

	missing, err := repo.GetByURL("https://example.cn/other")
	if err != nil || missing != nil {
		t.Errorf("Expected nil for unknown URL, got %+v (err: %v)", missing, err)
	}
}

func TestArticleSearch(t *testing.T) {
	repo := NewArticles(newTestDB(t))
	first := testArticle("a1")
	first.Title = "反垄断调查"
	repo.Insert(first)
	second := testArticle("a2")
	second.URL = "https://example.cn/news/a2"
	second.Title = "别的话题"
	repo.Insert(second)

	results, err := repo.Search("反垄断", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a1" {
		t.Errorf("Expected one matching article, got %+v", results)
	}
}

func TestArticleUpdateAnnotations(t *testing.T) {
	repo := NewArticles(newTestDB(t))
	repo.Insert(testArticle("a1"))

	highlights := []Highlight{
		{Text: "重点一", Color: "green"},
		{Text: "重点二", Color: "red"},
	}
	if err := repo.UpdateAnnotations("a1", "analyst note", highlights); err != nil {
		t.Fatalf("Failed to update annotations: %v", err)
	}

	article, _ := repo.Get("a1")
	if article.Notes != "analyst note" {
		t.Errorf("Expected notes updated, got '%s'", article.Notes)
	}
	if len(article.Highlights) != 2 || article.Highlights[1].Color != "red" {
		t.Errorf("Expected highlights replaced, got %+v", article.Highlights)
	}
}

func TestArticleUpdateMissingRow(t *testing.T) {
	repo := NewArticles(newTestDB(t))

	err := repo.UpdateTitle("missing", "new title")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows for missing article, got: %v", err)
	}
}

func TestArticleUpdateMetadataPartial(t *testing.T) {
	repo := NewArticles(newTestDB(t))
	repo.Insert(testArticle("a1"))

	newAuthor := "李娜"
	clearDate := ""
	err := repo.UpdateMetadata("a1", ArticleMetadataUpdate{
		Author:  &newAuthor,
		PubDate: &clearDate,
	})
	if err != nil {
		t.Fatalf("Failed to update metadata: %v", err)
	}

	article, _ := repo.Get("a1")
	if article.Author != "李娜" {
		t.Errorf("Expected author updated, got '%s'", article.Author)
	}
	if article.PubDate != nil {
		t.Errorf("Expected pub date cleared, got %v", article.PubDate)
	}
	if article.Title != "文章标题" {
		t.Errorf("Expected untouched fields preserved, got '%s'", article.Title)
	}
}

func TestArticleUpdateMetadataRejectsBadDate(t *testing.T) {
	repo := NewArticles(newTestDB(t))
	repo.Insert(testArticle("a1"))

	badDate := "15/03/2024"
	if err := repo.UpdateMetadata("a1", ArticleMetadataUpdate{PubDate: &badDate}); err == nil {
		t.Error("Expected error for malformed date")
	}
}

func TestArticleSetProjectAndUnfiled(t *testing.T) {
	db := newTestDB(t)
	articles := NewArticles(db)
	projects := NewProjects(db)

	projects.Insert(&Project{ID: "p1", Name: "Project", Status: ProjectStatusActive, CreatedAt: time.Now().UTC()})
	articles.Insert(testArticle("a1"))

	projectID := "p1"
	if err := articles.SetProject("a1", &projectID); err != nil {
		t.Fatalf("Failed to set project: %v", err)
	}

	unfiled, _ := articles.ListUnfiled()
	if len(unfiled) != 0 {
		t.Errorf("Expected no unfiled articles, got %d", len(unfiled))
	}

	inProject, _ := articles.ListByProject("p1")
	if len(inProject) != 1 || inProject[0].ID != "a1" {
		t.Errorf("Expected article in project, got %+v", inProject)
	}

	if err := articles.SetProject("a1", nil); err != nil {
		t.Fatalf("Failed to unfile article: %v", err)
	}
	unfiled, _ = articles.ListUnfiled()
	if len(unfiled) != 1 {
		t.Errorf("Expected one unfiled article, got %d", len(unfiled))
	}
}

func TestProjectDeleteUnfilesArticles(t *testing.T) {
	db := newTestDB(t)
	articles := NewArticles(db)
	projects := NewProjects(db)

	projects.Insert(&Project{ID: "p1", Name: "Project", Status: ProjectStatusActive, CreatedAt: time.Now().UTC()})
	article := testArticle("a1")
	projectID := "p1"
	article.ProjectID = &projectID
	articles.Insert(article)

	if err := projects.Delete("p1"); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	project, _ := projects.Get("p1")
	if project != nil {
		t.Error("Expected project deleted")
	}

	stored, _ := articles.Get("a1")
	if stored == nil {
		t.Fatal("Expected article to survive project deletion")
	}
	if stored.ProjectID != nil {
		t.Errorf("Expected article unfiled, got project %v", *stored.ProjectID)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	repo := NewProjects(newTestDB(t))

	dueBy := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	project := &Project{
		ID:           "p1",
		Name:         "Client X adverse media",
		ClientNameCN: "某公司",
		ClientNameEN: "Company X",
		Industry:     "fintech",
		Status:       ProjectStatusActive,
		DueBy:        &dueBy,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Insert(project); err != nil {
		t.Fatalf("Failed to insert project: %v", err)
	}

	stored, err := repo.Get("p1")
	if err != nil || stored == nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if stored.ClientNameCN != "某公司" || stored.Industry != "fintech" {
		t.Errorf("Unexpected project fields: %+v", stored)
	}
	if stored.DueBy == nil || stored.DueBy.Format("2006-01-02") != "2024-07-01" {
		t.Errorf("Expected due date round-tripped, got %v", stored.DueBy)
	}
}

func TestProjectListOrdersByDueDate(t *testing.T) {
	repo := NewProjects(newTestDB(t))

	later := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	repo.Insert(&Project{ID: "none", Name: "No deadline", Status: ProjectStatusActive, CreatedAt: time.Now().UTC()})
	repo.Insert(&Project{ID: "later", Name: "Later", Status: ProjectStatusActive, DueBy: &later, CreatedAt: time.Now().UTC()})
	repo.Insert(&Project{ID: "sooner", Name: "Sooner", Status: ProjectStatusActive, DueBy: &sooner, CreatedAt: time.Now().UTC()})

	projects, err := repo.List()
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("Expected 3 projects, got %d", len(projects))
	}
	if projects[0].ID != "sooner" || projects[1].ID != "later" || projects[2].ID != "none" {
		t.Errorf("Expected due-soonest-first order, got [%s %s %s]",
			projects[0].ID, projects[1].ID, projects[2].ID)
	}
}

func TestOutletUpsertByDomain(t *testing.T) {
	repo := NewOutlets(newTestDB(t))

	repo.UpsertByDomain(&Outlet{ID: "o1", DomainPattern: "thepaper.cn", Name: "澎湃新闻", CreatedAt: time.Now().UTC()})
	repo.UpsertByDomain(&Outlet{ID: "o2", DomainPattern: "thepaper.cn", Name: "澎湃新闻", NameEN: "The Paper", CreatedAt: time.Now().UTC()})

	outlets, err := repo.List()
	if err != nil {
		t.Fatalf("Failed to list outlets: %v", err)
	}
	if len(outlets) != 1 {
		t.Fatalf("Expected one outlet after upsert, got %d", len(outlets))
	}
	if outlets[0].ID != "o1" {
		t.Errorf("Expected original ID kept on upsert, got '%s'", outlets[0].ID)
	}
	if outlets[0].NameEN != "The Paper" {
		t.Errorf("Expected updated fields on upsert, got '%s'", outlets[0].NameEN)
	}
}

func TestOutletDeleteClearsArticleReferences(t *testing.T) {
	db := newTestDB(t)
	articles := NewArticles(db)
	outlets := NewOutlets(db)

	outlets.Insert(&Outlet{ID: "o1", DomainPattern: "thepaper.cn", Name: "澎湃新闻", CreatedAt: time.Now().UTC()})
	article := testArticle("a1")
	outletID := "o1"
	article.OutletID = &outletID
	articles.Insert(article)

	if err := outlets.Delete("o1"); err != nil {
		t.Fatalf("Failed to delete outlet: %v", err)
	}

	stored, _ := articles.Get("a1")
	if stored.OutletID != nil {
		t.Errorf("Expected outlet reference cleared, got %v", *stored.OutletID)
	}
}

func TestEntityCacheReplaceAndGet(t *testing.T) {
	db := newTestDB(t)
	articles := NewArticles(db)
	cache := NewEntities(db)

	articles.Insert(testArticle("a1"))

	entities := []ArticleEntity{
		{ArticleID: "a1", Name: "Tencent (腾讯)", Type: "company", Mentions: 3},
		{ArticleID: "a1", Name: "SAMR", Type: "government", Mentions: 1},
	}
	if err := cache.Replace("a1", "hash-v1", entities); err != nil {
		t.Fatalf("Failed to replace cache: %v", err)
	}

	cached, err := cache.GetForArticle("a1", "hash-v1")
	if err != nil {
		t.Fatalf("Failed to get cached entities: %v", err)
	}
	if len(cached) != 2 || cached[0].Name != "Tencent (腾讯)" || cached[0].Mentions != 3 {
		t.Errorf("Unexpected cached entities: %+v", cached)
	}

	// A different content hash means the text changed; the cache must miss.
	stale, err := cache.GetForArticle("a1", "hash-v2")
	if err != nil {
		t.Fatalf("Expected no error on hash mismatch, got: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("Expected cache miss for changed hash, got %+v", stale)
	}
}

func TestEntityCacheReplaceDropsOldEntries(t *testing.T) {
	db := newTestDB(t)
	articles := NewArticles(db)
	cache := NewEntities(db)

	articles.Insert(testArticle("a1"))
	cache.Replace("a1", "hash-v1", []ArticleEntity{{ArticleID: "a1", Name: "Old", Type: "other", Mentions: 1}})
	cache.Replace("a1", "hash-v2", []ArticleEntity{{ArticleID: "a1", Name: "New", Type: "other", Mentions: 1}})

	old, _ := cache.GetForArticle("a1", "hash-v1")
	if len(old) != 0 {
		t.Errorf("Expected old cache entries dropped, got %+v", old)
	}
	fresh, _ := cache.GetForArticle("a1", "hash-v2")
	if len(fresh) != 1 || fresh[0].Name != "New" {
		t.Errorf("Expected new cache entries, got %+v", fresh)
	}
}

func TestArticleDeleteRemovesCachedEntities(t *testing.T) {
	db := newTestDB(t)
	articles := NewArticles(db)
	cache := NewEntities(db)

	articles.Insert(testArticle("a1"))
	cache.Replace("a1", "hash-v1", []ArticleEntity{{ArticleID: "a1", Name: "Tencent", Type: "company", Mentions: 1}})

	if err := articles.Delete("a1"); err != nil {
		t.Fatalf("Failed to delete article: %v", err)
	}

	cached, err := cache.GetForArticle("a1", "hash-v1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cached) != 0 {
		t.Errorf("Expected cached entities removed with the article, got %+v", cached)
	}
}
