package directions

import (
	"regexp"
	"strings"
)

// Label 標頭標籤
type Label int

const (
	LabelPrep Label = iota
	LabelCook
	LabelReadyIn
)

// labelCount 可辨識的標籤數量
const labelCount = 3

// Labels 所有標籤，依 Prep、Cook、Ready In 排序
var Labels = [labelCount]Label{LabelPrep, LabelCook, LabelReadyIn}

// String 回傳標籤名稱
func (l Label) String() string {
	switch l {
	case LabelPrep:
		return "Prep"
	case LabelCook:
		return "Cook"
	case LabelReadyIn:
		return "Ready In"
	}
	return "unknown"
}

// headerPattern 標籤 + 可選分隔符 + 該行剩餘內容
//
// 分隔符後的 \s* 可以跨越換行，所以「標籤一行、數值下一行」的排版會把下一行當成數值。
var headerPattern = regexp.MustCompile(`(?i)\b(Prep|Cook|Ready\s*In)\b\s*[:\-]?\s*([^\n\r]+)`)

// parseLabel 將匹配到的標籤文字轉換為 Label
func parseLabel(token string) (Label, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(token), "")) {
	case "prep":
		return LabelPrep, true
	case "cook":
		return LabelCook, true
	case "readyin":
		return LabelReadyIn, true
	}
	return 0, false
}

// LabelMatch 單一標籤的匹配結果
type LabelMatch struct {
	Label     Label
	ValueText string
	End       int
}

// HeaderScan 標頭掃描的累加狀態：三個只能填一次的欄位加上最大結束位置
type HeaderScan struct {
	Matches  []LabelMatch
	Boundary int

	// slots 存放 Matches 的索引 + 1，0 表示尚未找到
	slots [labelCount]int
}

// record 記錄一筆匹配，標籤已出現過時忽略並回傳 false
func (h *HeaderScan) record(m LabelMatch) bool {
	if h.slots[m.Label] != 0 {
		return false
	}
	h.Matches = append(h.Matches, m)
	h.slots[m.Label] = len(h.Matches)
	if m.End > h.Boundary {
		h.Boundary = m.End
	}
	return true
}

// Value 回傳標籤的數值文字
func (h *HeaderScan) Value(l Label) (string, bool) {
	idx := h.slots[l]
	if idx == 0 {
		return "", false
	}
	return h.Matches[idx-1].ValueText, true
}

// Found 回傳標籤是否已找到
func (h *HeaderScan) Found(l Label) bool {
	return h.slots[l] != 0
}

// Count 已找到的不同標籤數量
func (h *HeaderScan) Count() int {
	n := 0
	for _, idx := range h.slots {
		if idx != 0 {
			n++
		}
	}
	return n
}

// Complete 三個標籤是否都已找到
func (h *HeaderScan) Complete() bool {
	return h.Count() == labelCount
}

// Missing 回傳尚未找到的標籤
func (h *HeaderScan) Missing() []Label {
	var missing []Label
	for _, l := range Labels {
		if !h.Found(l) {
			missing = append(missing, l)
		}
	}
	return missing
}

// ScanHeader 依出現順序掃描標籤，每個標籤只取第一次出現，三個都找到後立即停止
//
// 掃描在 NFKC 正規化後的文字上進行，End 仍是原文的位置。
func ScanHeader(text string) *HeaderScan {
	scan := &HeaderScan{Matches: make([]LabelMatch, 0, labelCount)}
	folded := foldText(text)
	src := folded.text

	for _, loc := range headerPattern.FindAllStringSubmatchIndex(src, -1) {
		label, ok := parseLabel(src[loc[2]:loc[3]])
		if !ok {
			continue
		}
		scan.record(LabelMatch{
			Label:     label,
			ValueText: strings.TrimSpace(src[loc[4]:loc[5]]),
			End:       folded.origin(loc[1]),
		})
		if scan.Complete() {
			break
		}
	}

	return scan
}
