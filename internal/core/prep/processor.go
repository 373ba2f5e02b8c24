// Package prep 將單筆食譜資料列轉換為帶有 prep/cook/ready 分鐘數與乾淨步驟文字的資料列。
package prep

import (
	"context"
	"fmt"

	"recipe-prep/internal/core/directions"
	"recipe-prep/internal/pkg/common"

	"go.uber.org/zap"
)

// 輸出欄位名稱
const (
	FieldPrepMinutes  = "prep_minutes"
	FieldCookMinutes  = "cook_minutes"
	FieldReadyMinutes = "ready_minutes"
)

// Result 單筆 directions 值的處理結果
type Result struct {
	Directions   *common.Record `json:"directions"`
	PrepMinutes  *int           `json:"prep_minutes"`
	CookMinutes  *int           `json:"cook_minutes"`
	ReadyMinutes *int           `json:"ready_minutes"`
}

// Processor 食譜資料列處理器，不持有可變狀態，可同時處理多筆資料
type Processor struct {
	field     string
	extractor *directions.Extractor
}

// NewProcessor 創建處理器，field 為資料列中 directions 所在的欄位名稱
func NewProcessor(field string, opts directions.Options) *Processor {
	if field == "" {
		field = DirectionsKey
	}
	return &Processor{
		field:     field,
		extractor: directions.NewExtractor(opts),
	}
}

// Field 回傳處理的欄位名稱
func (p *Processor) Field() string {
	return p.field
}

// ProcessValue 處理 directions 欄位的原始值
func (p *Processor) ProcessValue(value interface{}) *Result {
	return p.process(ParseDirectionsInput(value))
}

func (p *Processor) process(input DirectionsInput) *Result {
	mapping := input.Mapping()

	raw, _ := mapping.Get(DirectionsKey)
	if raw == nil {
		common.LogDebug("directions 欄位為空", zap.String("input_type", inputType(input)))
		return &Result{Directions: mapping}
	}

	text, ok := raw.(string)
	if !ok {
		text = fmt.Sprint(raw)
	}

	res := p.extractor.Extract(text)
	mapping.Set(DirectionsKey, res.Body)

	common.LogDebug("directions 標頭擷取完成",
		zap.String("input_type", inputType(input)),
		zap.Int("labels_found", res.LabelsFound),
		zap.Int("labels_recovered", len(res.Recovered)),
		zap.Int("boundary", res.Boundary),
	)

	return &Result{
		Directions:   mapping,
		PrepMinutes:  res.PrepMinutes,
		CookMinutes:  res.CookMinutes,
		ReadyMinutes: res.ReadyMinutes,
	}
}

// Process 處理整筆資料列，回傳新的資料列：directions 欄位替換為清理後的映射並附加三個分鐘欄位
func (p *Processor) Process(rec *common.Record) *common.Record {
	var value interface{}
	out := common.NewRecord()
	if rec != nil {
		value, _ = rec.Get(p.field)
		out = rec.Clone()
	}

	input := ParseDirectionsInput(value)
	res := p.process(input)
	if _, isAbsent := input.(Absent); isAbsent {
		out.Set(p.field, nil)
	} else {
		out.Set(p.field, res.Directions)
	}
	out.Set(FieldPrepMinutes, res.PrepMinutes)
	out.Set(FieldCookMinutes, res.CookMinutes)
	out.Set(FieldReadyMinutes, res.ReadyMinutes)
	return out
}

// Handle 供工作隊列呼叫，取消的請求回傳 context 錯誤
func (p *Processor) Handle(ctx context.Context, rec *common.Record) (*common.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Process(rec), nil
}

func inputType(input DirectionsInput) string {
	switch input.(type) {
	case PlainText:
		return "plain_text"
	case EncodedMapping:
		return "encoded_mapping"
	case Mapping:
		return "mapping"
	}
	return "absent"
}
