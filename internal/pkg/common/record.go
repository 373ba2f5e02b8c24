package common

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record 保留欄位順序的映射，用於食譜資料列與 directions 映射
type Record struct {
	keys   []string
	values map[string]interface{}
}

// NewRecord 創建空的 Record
func NewRecord() *Record {
	return &Record{values: make(map[string]interface{})}
}

// RecordOf 依 key/value 交替的參數創建 Record
func RecordOf(pairs ...interface{}) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}
	return r
}

// Set 設置欄位，已存在的欄位保留原位置
func (r *Record) Set(key string, value interface{}) {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get 獲取欄位
func (r *Record) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys 依插入順序回傳欄位名稱
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len 欄位數量
func (r *Record) Len() int {
	return len(r.keys)
}

// Clone 淺複製
func (r *Record) Clone() *Record {
	c := &Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]interface{}, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON 依欄位順序輸出 JSON 物件
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 解析 JSON 物件並保留欄位順序，巢狀物件同樣解析為 *Record
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeOrdered(dec)
	if err != nil {
		return err
	}
	rec, ok := v.(*Record)
	if !ok {
		return NewValidationError("record must be a JSON object")
	}
	*r = *rec
	return nil
}

// decodeOrdered 以 token 方式遞迴解析 JSON 值
func decodeOrdered(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		rec := NewRecord()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			rec.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return rec, nil
	case '[':
		list := make([]interface{}, 0)
		for dec.More() {
			val, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}
