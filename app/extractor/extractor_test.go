package extractor

import (
	"testing"
)

func TestExtractPrefersOpenGraphTitle(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="监管部门对某公司立案调查">
		<title>监管部门对某公司立案调查_腾讯新闻</title>
	</head><body></body></html>`

	meta := Extract([]byte(html))
	if meta.Title != "监管部门对某公司立案调查" {
		t.Errorf("Expected og:title to win, got '%s'", meta.Title)
	}
}

func TestExtractStripsTitleSuffix(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"某公司被罚款五千万_腾讯新闻", "某公司被罚款五千万"},
		{"某公司被罚款五千万|新浪财经", "某公司被罚款五千万"},
		{"某公司被罚款五千万 - 新浪网", "某公司被罚款五千万"},
		{"反垄断调查进展—财新网", "反垄断调查进展"},
		{"A well-known case", "A well-known case"}, // hyphenated word, not a separator
		{"单独标题", "单独标题"},
	}

	for _, tt := range tests {
		html := `<html><head><title>` + tt.title + `</title></head><body></body></html>`
		meta := Extract([]byte(html))
		if meta.Title != tt.expected {
			t.Errorf("Title '%s': expected '%s', got '%s'", tt.title, tt.expected, meta.Title)
		}
	}
}

func TestExtractSourceNamePriority(t *testing.T) {
	html := `<html><head>
		<meta property="og:site_name" content="澎湃新闻">
		<meta name="source" content="其他来源">
	</head><body></body></html>`

	meta := Extract([]byte(html))
	if meta.SourceName != "澎湃新闻" {
		t.Errorf("Expected og:site_name to win, got '%s'", meta.SourceName)
	}

	htmlNoOG := `<html><head>
		<meta name="publisher" content="财新网">
	</head><body></body></html>`
	meta = Extract([]byte(htmlNoOG))
	if meta.SourceName != "财新网" {
		t.Errorf("Expected publisher meta fallback, got '%s'", meta.SourceName)
	}
}

func TestExtractAuthorPriority(t *testing.T) {
	html := `<html><head>
		<meta name="author" content="张伟">
		<meta property="article:author" content="李娜">
	</head><body></body></html>`

	meta := Extract([]byte(html))
	if meta.Author != "张伟" {
		t.Errorf("Expected author meta to win, got '%s'", meta.Author)
	}
}

func TestExtractPubDate(t *testing.T) {
	html := `<html><head>
		<meta property="article:published_time" content="2024-03-15T08:30:00+08:00">
	</head><body></body></html>`

	meta := Extract([]byte(html))
	if meta.PubDate != "2024-03-15" {
		t.Errorf("Expected '2024-03-15', got '%s'", meta.PubDate)
	}
}

func TestExtractMissingFieldsAreEmpty(t *testing.T) {
	meta := Extract([]byte(`<html><head></head><body><p>正文</p></body></html>`))
	if meta.Title != "" || meta.SourceName != "" || meta.Author != "" || meta.PubDate != "" {
		t.Errorf("Expected all fields empty, got %+v", meta)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	html := []byte(`<html><head>
		<meta property="og:title" content="标题">
		<meta property="og:site_name" content="来源">
		<meta name="author" content="记者甲">
		<meta name="publishdate" content="2024年1月5日">
	</head><body></body></html>`)

	first := Extract(html)
	for i := 0; i < 5; i++ {
		if got := Extract(html); got != first {
			t.Errorf("Expected identical output on repeat extraction, got %+v vs %+v", got, first)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024/03/15", "2024-03-15"},
		{"2024年1月5日", "2024-01-05"},
		{"2024-03-15T08:30:00Z", "2024-03-15"},
		{"March 15, 2024", "2024-03-15"},
		{"", ""},
		{"not a date", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDate(tt.input); got != tt.expected {
			t.Errorf("NormalizeDate('%s'): expected '%s', got '%s'", tt.input, tt.expected, got)
		}
	}
}

func TestFindDateInText(t *testing.T) {
	text := "某公司公告\n2024年3月15日，市场监管总局发布消息称……"
	if got := FindDateInText(text); got != "2024-03-15" {
		t.Errorf("Expected '2024-03-15', got '%s'", got)
	}

	if got := FindDateInText("没有日期的文本"); got != "" {
		t.Errorf("Expected empty result, got '%s'", got)
	}
}

func TestFindBylineInText(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"南方周末记者：张伟\n正文内容", "张伟"},
		{"作者: 李娜", "李娜"},
		{"没有署名的正文", ""},
	}

	for _, tt := range tests {
		if got := FindBylineInText(tt.text); got != tt.expected {
			t.Errorf("FindBylineInText('%s'): expected '%s', got '%s'", tt.text, tt.expected, got)
		}
	}
}

func TestMetadataMerge(t *testing.T) {
	meta := Metadata{Title: "已有标题"}
	meta.Merge(Metadata{Title: "其他标题", Author: "张伟", PubDate: "2024-03-15"})

	if meta.Title != "已有标题" {
		t.Errorf("Merge should not overwrite existing fields, got '%s'", meta.Title)
	}
	if meta.Author != "张伟" {
		t.Errorf("Merge should fill empty author, got '%s'", meta.Author)
	}
	if meta.PubDate != "2024-03-15" {
		t.Errorf("Merge should fill empty pub date, got '%s'", meta.PubDate)
	}
}
