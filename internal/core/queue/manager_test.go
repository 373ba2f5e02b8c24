package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"
)

func tagHandler(ctx context.Context, rec *common.Record) (*common.Record, error) {
	out := rec.Clone()
	out.Set("done", true)
	return out, nil
}

func TestProcessBatchKeepsOrder(t *testing.T) {
	m := NewManager(&config.QueueConfig{Workers: 4, MaxSize: 100, MaxBatchSize: 50}, tagHandler)
	m.Start()
	defer m.Close()

	records := make([]*common.Record, 20)
	for i := range records {
		records[i] = common.RecordOf("id", i)
	}

	results, err := m.ProcessBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	for i, res := range results {
		if res.Error != nil {
			t.Fatalf("result %d: %v", i, res.Error)
		}
		if id, _ := res.Record.Get("id"); id != i {
			t.Errorf("result %d has id %v", i, id)
		}
		if done, _ := res.Record.Get("done"); done != true {
			t.Errorf("result %d not processed", i)
		}
	}

	status := m.GetQueueStatus()
	if status.ProcessedCount != 20 || status.FailedCount != 0 || !status.Running {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestProcessBatchLimits(t *testing.T) {
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 10, MaxBatchSize: 2}, tagHandler)
	m.Start()
	defer m.Close()

	if _, err := m.ProcessBatch(context.Background(), nil); !errors.Is(err, common.ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}

	recs := []*common.Record{common.NewRecord(), common.NewRecord(), common.NewRecord()}
	if _, err := m.ProcessBatch(context.Background(), recs); !errors.Is(err, common.ErrBatchTooLarge) {
		t.Errorf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestWorkerRecoversPanic(t *testing.T) {
	handler := func(ctx context.Context, rec *common.Record) (*common.Record, error) {
		if v, _ := rec.Get("boom"); v == true {
			panic("bad record")
		}
		return rec, nil
	}
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 10}, handler)
	m.Start()
	defer m.Close()

	results, err := m.ProcessBatch(context.Background(), []*common.Record{
		common.RecordOf("boom", true),
		common.RecordOf("boom", false),
	})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if results[0].Error == nil {
		t.Error("expected panic to become an error")
	}
	if results[1].Error != nil {
		t.Errorf("second record should succeed: %v", results[1].Error)
	}
	if got := m.GetQueueStatus().FailedCount; got != 1 {
		t.Errorf("FailedCount = %d, want 1", got)
	}
}

func TestHandlerError(t *testing.T) {
	handler := func(ctx context.Context, rec *common.Record) (*common.Record, error) {
		return nil, fmt.Errorf("nope")
	}
	m := NewManager(&config.QueueConfig{Workers: 2, MaxSize: 10}, handler)
	m.Start()
	defer m.Close()

	ch, err := m.Enqueue(context.Background(), common.NewRecord())
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	select {
	case res := <-ch:
		if res.Error == nil {
			t.Error("expected handler error")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestEnqueueFull(t *testing.T) {
	// 未啟動工作協程，隊列不會被消化
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1}, tagHandler)

	if _, err := m.Enqueue(context.Background(), common.NewRecord()); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if _, err := m.Enqueue(context.Background(), common.NewRecord()); !errors.Is(err, common.ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	m.Close()
	if _, err := m.Enqueue(context.Background(), common.NewRecord()); err == nil {
		t.Error("expected error after Close")
	}
}

func TestProcessBatchLargerThanQueue(t *testing.T) {
	m := NewManager(&config.QueueConfig{Workers: 2, MaxSize: 2, MaxBatchSize: 50}, tagHandler)
	m.Start()
	defer m.Close()

	records := make([]*common.Record, 12)
	for i := range records {
		records[i] = common.RecordOf("id", i)
	}

	results, err := m.ProcessBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	for i, res := range results {
		if res.Error != nil {
			t.Fatalf("result %d: %v", i, res.Error)
		}
		if id, _ := res.Record.Get("id"); id != i {
			t.Errorf("result %d has id %v", i, id)
		}
	}
}

func TestProcessBatchWaitsUntilContextDone(t *testing.T) {
	// 未啟動工作協程，第二筆會一直等待空位
	m := NewManager(&config.QueueConfig{Workers: 1, MaxSize: 1}, tagHandler)
	defer m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := m.ProcessBatch(ctx, []*common.Record{common.NewRecord(), common.NewRecord()})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
