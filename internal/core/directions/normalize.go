package directions

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalize 以 NFKC 正規化文字，不換行空白 (U+00A0)、全形數字與全形冒號會變成 ASCII
func normalize(s string) string {
	return norm.NFKC.String(s)
}

// foldedText NFKC 正規化後的文字與每個位元組在原文中的位置
type foldedText struct {
	text string
	// offsets 長度為 len(text)+1，nil 表示正規化沒有改變原文
	offsets []int
}

// foldText 正規化文字並記錄位置對應，讓在正規化文字上找到的邊界可以切回原文
func foldText(s string) foldedText {
	if norm.NFKC.IsNormalString(s) {
		return foldedText{text: s}
	}

	var (
		it      norm.Iter
		b       strings.Builder
		offsets = make([]int, 0, len(s)+1)
	)
	b.Grow(len(s))
	it.InitString(norm.NFKC, s)
	for start := 0; !it.Done(); start = it.Pos() {
		seg := it.Next()
		end := it.Pos()
		b.Write(seg)
		if string(seg) == s[start:end] {
			for k := range seg {
				offsets = append(offsets, start+k)
			}
			continue
		}
		// 被改寫的片段整段對應到片段開頭
		for range seg {
			offsets = append(offsets, start)
		}
	}
	offsets = append(offsets, len(s))
	return foldedText{text: b.String(), offsets: offsets}
}

// origin 將正規化文字中的位置轉換為原文位置
func (f foldedText) origin(i int) int {
	if f.offsets == nil {
		return i
	}
	return f.offsets[i]
}
