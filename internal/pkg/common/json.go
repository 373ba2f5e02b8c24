package common

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ParseJSON 解析 JSON 字符串到結構體
func ParseJSON(data string, v interface{}) error {
	return decodeJSON(strings.NewReader(data), v)
}

// DecodeJSON 使用統一設定解析 JSON
func DecodeJSON(r io.Reader, v interface{}) error {
	return decodeJSON(r, v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	for {
		t, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if t != nil {
			return fmt.Errorf("unexpected extra JSON data")
		}
	}
}

// jsonBlockPattern 不含巢狀大括號的 JSON 物件片段
var jsonBlockPattern = regexp.MustCompile(`\{[^{}]*\}`)

// FindJSONObjects 找出文字中所有包含 key 的扁平 JSON 物件片段，依出現順序回傳
func FindJSONObjects(text, key string) []string {
	var blocks []string
	needle := strings.ToLower(`"` + key + `"`)
	for _, block := range jsonBlockPattern.FindAllString(text, -1) {
		if strings.Contains(strings.ToLower(block), needle) {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// ToJSON 將結構體轉換為 JSON 字符串
func ToJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
