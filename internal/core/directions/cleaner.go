package directions

import (
	"strings"
	"unicode"
)

// DefaultFallbackCutLines 找不到任何標籤時，視為「標籤/數值 x3」各佔一行而剪掉的行數
const DefaultFallbackCutLines = 6

// labelResidue 標籤語法在邊界後可能留下的字元
const labelResidue = " \n\r\t:.-"

// CleanBody 依標頭邊界切出內文，邊界為 0 時改用固定行數剪裁
func CleanBody(text string, boundary int) string {
	return cleanBody(text, boundary, DefaultFallbackCutLines)
}

func cleanBody(text string, boundary, cutLines int) string {
	var cleaned string
	switch {
	case boundary > 0 && boundary <= len(text):
		cleaned = strings.TrimLeft(text[boundary:], labelResidue)
	default:
		lines := splitLines(text)
		if len(lines) >= cutLines {
			cleaned = strings.TrimLeftFunc(strings.Join(lines[cutLines:], "\n"), unicode.IsSpace)
		} else {
			cleaned = text
		}
	}

	// 剪完只剩空白時保留原文
	if strings.TrimSpace(cleaned) == "" {
		return text
	}
	return cleaned
}
