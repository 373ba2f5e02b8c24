package directions

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultHeadWindowLines 後備搜尋只看開頭這幾行，避免內文中的 "cook" 被誤認為標籤
const DefaultHeadWindowLines = 8

// labelPatterns 單一標籤的寬鬆樣式
var labelPatterns = map[Label]*regexp.Regexp{
	LabelPrep:    regexp.MustCompile(`(?i)\bPrep\b\s*[:\-]?\s*([^\n\r]+)`),
	LabelCook:    regexp.MustCompile(`(?i)\bCook\b\s*[:\-]?\s*([^\n\r]+)`),
	LabelReadyIn: regexp.MustCompile(`(?i)\bReady\s*In\b\s*[:\-]?\s*([^\n\r]+)`),
}

// isLineBreak 是否為行分隔字元
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// splitLines 依所有行分隔字元切行，\r\n 視為一個分隔，結尾的換行不產生空行
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// headWindow 取文字開頭 n 行並以空白接成一行
//
// 接成一行後，單一標籤的數值會延伸到後面幾行的內容，例如
// "Cook: 30 mins\nBake 1 hour." 的 Cook 數值是 "30 mins Bake 1 hour."。
func headWindow(text string, n int) string {
	lines := splitLines(text)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, " ")
}

// RecoverMissing 在開頭視窗內以寬鬆樣式找回缺少的標籤數值
//
// 找回的數值只用於時間解析，不會延伸標頭邊界。
func RecoverMissing(text string, missing []Label) map[Label]string {
	return recoverMissing(text, missing, DefaultHeadWindowLines)
}

func recoverMissing(text string, missing []Label, windowLines int) map[Label]string {
	recovered := make(map[Label]string, len(missing))
	if len(missing) == 0 {
		return recovered
	}

	head := headWindow(normalize(text), windowLines)
	for _, l := range missing {
		pattern, ok := labelPatterns[l]
		if !ok {
			continue
		}
		if m := pattern.FindStringSubmatch(head); m != nil {
			recovered[l] = strings.TrimSpace(m[1])
		}
	}
	return recovered
}
