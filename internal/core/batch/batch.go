// Package batch 以 errgroup 控制並行數量，批次處理資料列並保留輸入順序
package batch

import (
	"context"
	"fmt"
	"time"

	"recipe-prep/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency 未指定時的並行數量
const defaultConcurrency = 8

// Handler 處理單筆資料列
type Handler func(ctx context.Context, rec *common.Record) (*common.Record, error)

// Result 單筆處理結果，Err 不為 nil 時 Record 為 nil
type Result struct {
	Record *common.Record
	Err    error
}

// Processor 批次處理器
type Processor struct {
	concurrency int
}

// Option 設定批次處理器
type Option func(*Processor)

// WithConcurrency 設定最大並行數量，非正數時忽略
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewProcessor 創建批次處理器
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Concurrency 最大並行數量
func (p *Processor) Concurrency() int {
	return p.concurrency
}

// Process 並行處理所有資料列，單筆失敗只記錄在結果中，僅在 context 取消時回傳錯誤
func (p *Processor) Process(ctx context.Context, records []*common.Record, h Handler) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// 每個 goroutine 只寫入自己的位置
			results[i] = run(ctx, i, rec, h)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	common.LogInfo("批次處理完成",
		zap.Int("records", len(records)),
		zap.Int("failed", failed),
		zap.Int("concurrency", p.concurrency),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// run 執行單筆處理，panic 轉為錯誤
func run(ctx context.Context, index int, rec *common.Record, h Handler) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("record %d: panic: %v", index, r)}
		}
		if res.Err != nil {
			common.LogWarn("資料列處理失敗", zap.Int("index", index), zap.Error(res.Err))
		}
	}()

	out, err := h(ctx, rec)
	if err != nil {
		return Result{Err: fmt.Errorf("record %d: %w", index, err)}
	}
	return Result{Record: out}
}
