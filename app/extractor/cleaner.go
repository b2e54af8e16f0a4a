package extractor

import (
	"strings"
	"unicode/utf8"
)

// footerMarkers are boilerplate lines that mark the end of article content on
// Chinese news sites. Everything from the first marker on is dropped.
var footerMarkers = []string{
	"特别声明", "免责声明", "版权声明", "责任编辑",
	"原标题：", "阅读原文", "返回搜狐", "举报/反馈",
	"扫码下载", "下载客户端", "关于我们", "联系我们",
	"©", "ICP备", "ICP证", "京公网安备", "沪公网安备",
}

// CleanText strips footer boilerplate and UI remnants from extracted article
// text, keeping one line per paragraph.
func CleanText(raw string) string {
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hasFooterMarker(line) {
			break
		}
		// Very short lines without Chinese characters are UI remnants like "+1"
		if utf8.RuneCountInString(line) <= 4 && !ContainsChinese(line) {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func hasFooterMarker(line string) bool {
	for _, marker := range footerMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// ContainsChinese reports whether the text contains CJK unified ideographs
func ContainsChinese(text string) bool {
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

// CountChinese returns the number of CJK unified ideographs in the text
func CountChinese(text string) int {
	count := 0
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			count++
		}
	}
	return count
}
