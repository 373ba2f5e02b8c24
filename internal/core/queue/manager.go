package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"go.uber.org/zap"
)

// Handler 處理單筆記錄
type Handler func(ctx context.Context, rec *common.Record) (*common.Record, error)

// Job 隊列請求
type Job struct {
	Context context.Context
	Record  *common.Record
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Record *common.Record
	Error  error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	FailedCount    int64 `json:"failed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
	Running        bool  `json:"running"`
}

// Manager 隊列管理器
type Manager struct {
	config    *config.QueueConfig
	handler   Handler
	queue     chan *Job
	done      chan struct{}
	wg        sync.WaitGroup
	processed int64
	failed    int64
	mu        sync.RWMutex
	running   bool
}

// NewManager 創建新的隊列管理器
func NewManager(cfg *config.QueueConfig, handler Handler) *Manager {
	return &Manager{
		config:  cfg,
		handler: handler,
		queue:   make(chan *Job, cfg.MaxSize),
		done:    make(chan struct{}),
	}
}

// Start 啟動工作協程
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true

	workers := m.config.Workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	common.LogInfo("隊列已啟動",
		zap.Int("workers", workers),
		zap.Int("max_queue_size", m.config.MaxSize),
	)
}

// worker 從隊列取出請求並處理
func (m *Manager) worker(id int) {
	defer m.wg.Done()
	for {
		select {
		case job := <-m.queue:
			m.run(id, job)
		case <-m.done:
			return
		}
	}
}

// run 執行單一請求，panic 轉為錯誤結果
func (m *Manager) run(id int, job *Job) {
	var res Result
	defer func() {
		if r := recover(); r != nil {
			common.LogError("隊列處理發生 panic",
				zap.Int("worker", id),
				zap.Any("panic", r),
			)
			res = Result{Error: fmt.Errorf("worker panic: %v", r)}
		}
		if res.Error != nil {
			atomic.AddInt64(&m.failed, 1)
		}
		atomic.AddInt64(&m.processed, 1)
		job.Result <- res
	}()

	if err := job.Context.Err(); err != nil {
		res = Result{Error: err}
		return
	}

	rec, err := m.handler(job.Context, job.Record)
	res = Result{Record: rec, Error: err}
}

// errManagerClosed 隊列已關閉
var errManagerClosed = fmt.Errorf("queue manager is closed")

// Enqueue 將請求加入隊列，隊列已滿時回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, rec *common.Record) (<-chan Result, error) {
	return m.enqueue(ctx, rec, false)
}

// enqueueWait 將請求加入隊列，隊列已滿時等待空位直到 ctx 結束或隊列關閉
func (m *Manager) enqueueWait(ctx context.Context, rec *common.Record) (<-chan Result, error) {
	return m.enqueue(ctx, rec, true)
}

func (m *Manager) enqueue(ctx context.Context, rec *common.Record, wait bool) (<-chan Result, error) {
	job := &Job{
		Context: ctx,
		Record:  rec,
		Result:  make(chan Result, 1),
	}

	select {
	case <-m.done:
		return nil, errManagerClosed
	default:
	}

	if !wait {
		select {
		case m.queue <- job:
			return m.enqueued(job), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			return nil, common.ErrQueueFull
		}
	}

	select {
	case m.queue <- job:
		return m.enqueued(job), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, errManagerClosed
	}
}

func (m *Manager) enqueued(job *Job) <-chan Result {
	common.LogDebug("Request enqueued",
		zap.Int("queue_length", len(m.queue)),
		zap.Int("max_queue_size", m.config.MaxSize),
	)
	return job.Result
}

// ProcessBatch 將整批記錄送入隊列並依輸入順序收集結果
func (m *Manager) ProcessBatch(ctx context.Context, records []*common.Record) ([]Result, error) {
	if len(records) == 0 {
		return nil, common.ErrEmptyBatch
	}
	if m.config.MaxBatchSize > 0 && len(records) > m.config.MaxBatchSize {
		return nil, common.ErrBatchTooLarge
	}

	// 批次可能大於隊列容量，逐筆等待空位
	pending := make([]<-chan Result, len(records))
	for i, rec := range records {
		ch, err := m.enqueueWait(ctx, rec)
		if err != nil {
			// 已送出的請求仍會完成，結果留在緩衝通道中
			return nil, err
		}
		pending[i] = ch
	}

	results := make([]Result, len(records))
	for i, ch := range pending {
		select {
		case res := <-ch:
			results[i] = res
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	common.LogInfo("批次處理完成", zap.Int("records", len(records)))
	return results, nil
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		FailedCount:    atomic.LoadInt64(&m.failed),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
		Running:        m.running,
	}
}

// Close 關閉隊列管理器並等待工作協程結束
func (m *Manager) Close() {
	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		return
	default:
		close(m.done)
	}
	m.running = false
	m.mu.Unlock()

	m.wg.Wait()

	// 未處理的請求回傳錯誤
	for {
		select {
		case job := <-m.queue:
			job.Result <- Result{Error: fmt.Errorf("queue manager is closed")}
		default:
			common.LogInfo("隊列已關閉", zap.Int64("processed", atomic.LoadInt64(&m.processed)))
			return
		}
	}
}
