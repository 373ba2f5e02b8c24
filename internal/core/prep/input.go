package prep

import (
	"fmt"
	"sort"
	"strings"

	"recipe-prep/internal/pkg/common"
)

// DirectionsKey 步驟映射內存放文字的欄位
const DirectionsKey = "directions"

// DirectionsInput directions 欄位的原始值：PlainText、EncodedMapping、Mapping 或 Absent
type DirectionsInput interface {
	// Mapping 回傳正規化後的映射，保證含有 directions 欄位
	Mapping() *common.Record
	isDirectionsInput()
}

// PlainText 純文字步驟，或無法解析為映射的字串
type PlainText string

// EncodedMapping 以文字編碼的映射，例如 "{'directions': u'...'}"
type EncodedMapping struct {
	Raw     string
	Decoded *common.Record
}

// Mapping 已解析的映射（例如 JSON 請求中的物件）
type Mapping struct {
	Record *common.Record
}

// Absent 欄位不存在或為 null
type Absent struct{}

func (PlainText) isDirectionsInput()      {}
func (EncodedMapping) isDirectionsInput() {}
func (Mapping) isDirectionsInput()        {}
func (Absent) isDirectionsInput()         {}

// Mapping 包裝成單一欄位映射
func (t PlainText) Mapping() *common.Record {
	return common.RecordOf(DirectionsKey, string(t))
}

// Mapping 回傳解析結果的複本
func (e EncodedMapping) Mapping() *common.Record {
	return withDirections(e.Decoded.Clone())
}

// Mapping 回傳映射的複本
func (m Mapping) Mapping() *common.Record {
	return withDirections(m.Record.Clone())
}

// Mapping 回傳 directions 為 nil 的映射
func (Absent) Mapping() *common.Record {
	return common.RecordOf(DirectionsKey, nil)
}

// withDirections 確保映射有 directions 欄位
func withDirections(rec *common.Record) *common.Record {
	if _, ok := rec.Get(DirectionsKey); !ok {
		rec.Set(DirectionsKey, nil)
	}
	return rec
}

// ParseDirectionsInput 判斷 directions 欄位值的型別，解析失敗時視為 PlainText，永不回傳錯誤
func ParseDirectionsInput(value interface{}) DirectionsInput {
	switch v := value.(type) {
	case nil:
		return Absent{}
	case string:
		return parseText(v)
	case *common.Record:
		if v == nil {
			return Absent{}
		}
		return Mapping{Record: v}
	case map[string]interface{}:
		return Mapping{Record: recordFromMap(v)}
	default:
		return PlainText(fmt.Sprint(v))
	}
}

func parseText(s string) DirectionsInput {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return PlainText(s)
	}

	decoded, err := common.ParseLiteral(trimmed)
	if err != nil {
		return PlainText(s)
	}
	rec, ok := decoded.(*common.Record)
	if !ok {
		return PlainText(s)
	}
	return EncodedMapping{Raw: s, Decoded: rec}
}

// recordFromMap 將無序 map 轉為依鍵排序的 Record
func recordFromMap(m map[string]interface{}) *common.Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := common.NewRecord()
	for _, k := range keys {
		rec.Set(k, m[k])
	}
	return rec
}
