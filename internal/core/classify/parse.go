package classify

import (
	"strings"

	"recipe-prep/internal/pkg/common"
)

// categoriesKey 模型輸出中的欄位名稱
const categoriesKey = "categories"

// ParseCategories 從模型輸出取出餐別標籤
//
// 由最後一個包含 categories 的 JSON 片段往前嘗試，第一個能解析的片段決定結果。
// 沒有可用片段時回傳空切片。
func ParseCategories(output string, allowMulti bool) []string {
	blocks := common.FindJSONObjects(output, categoriesKey)
	for i := len(blocks) - 1; i >= 0; i-- {
		cats, ok := decodeCategories(blocks[i])
		if !ok {
			continue
		}
		if !allowMulti && len(cats) > 1 {
			cats = cats[:1]
		}
		return cats
	}
	return []string{}
}

// decodeCategories 解析單一片段，格式不符時回傳 false
func decodeCategories(block string) ([]string, bool) {
	var parsed map[string]interface{}
	if err := common.ParseJSON(block, &parsed); err != nil {
		return nil, false
	}

	cats := []string{}
	raw, exists := parsed[categoriesKey]
	if !exists || raw == nil {
		return cats, true
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		s = strings.ToLower(strings.TrimSpace(s))
		if allowedCategories[s] {
			cats = append(cats, s)
		}
	}
	return cats, true
}
