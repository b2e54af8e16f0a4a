package extractor

import (
	"strings"
	"testing"
)

func TestCleanTextDropsFooterBoilerplate(t *testing.T) {
	raw := "第一段正文内容。\n第二段正文内容。\n特别声明：以上内容为自媒体平台发布。\n这行不应该出现。"

	cleaned := CleanText(raw)
	if !strings.Contains(cleaned, "第一段正文内容。") {
		t.Error("Expected article text to be kept")
	}
	if strings.Contains(cleaned, "特别声明") {
		t.Error("Expected footer marker line to be dropped")
	}
	if strings.Contains(cleaned, "这行不应该出现") {
		t.Error("Expected everything after the footer marker to be dropped")
	}
}

func TestCleanTextDropsShortUIRemnants(t *testing.T) {
	raw := "正文段落一。\n+1\nOK\n正文段落二。"

	cleaned := CleanText(raw)
	if strings.Contains(cleaned, "+1") || strings.Contains(cleaned, "OK") {
		t.Errorf("Expected short non-Chinese lines to be dropped, got '%s'", cleaned)
	}
	if !strings.Contains(cleaned, "正文段落二。") {
		t.Error("Expected article text to be kept")
	}
}

func TestCleanTextKeepsShortChineseLines(t *testing.T) {
	cleaned := CleanText("标题\n正文内容在这里。")
	if !strings.Contains(cleaned, "标题") {
		t.Error("Expected short Chinese line to be kept")
	}
}

func TestCleanTextCollapsesBlankLines(t *testing.T) {
	cleaned := CleanText("段落一。\n\n\n段落二。")
	if cleaned != "段落一。\n段落二。" {
		t.Errorf("Expected one line per paragraph, got '%s'", cleaned)
	}
}

func TestContainsChinese(t *testing.T) {
	if !ContainsChinese("包含中文") {
		t.Error("Expected Chinese text to be detected")
	}
	if ContainsChinese("english only") {
		t.Error("Expected no Chinese in Latin text")
	}
}

func TestCountChinese(t *testing.T) {
	if got := CountChinese("中文 mixed 文本"); got != 4 {
		t.Errorf("Expected 4 Chinese characters, got %d", got)
	}
	if got := CountChinese(""); got != 0 {
		t.Errorf("Expected 0 for empty string, got %d", got)
	}
}
