package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	aiservice "recipe-prep/internal/core/ai/service"
	"recipe-prep/internal/core/batch"
	"recipe-prep/internal/core/classify"
)

type scriptedGenerator struct{}

func (scriptedGenerator) ProcessRequest(ctx context.Context, system, prompt string) (*aiservice.Response, error) {
	switch {
	case strings.Contains(prompt, "Title: Pancakes"):
		return &aiservice.Response{Content: `{"categories": ["breakfast"]}`}, nil
	case strings.Contains(prompt, "Title: Broken"):
		return nil, errors.New("upstream unavailable")
	default:
		return &aiservice.Response{Content: `{"categories": ["Lunch", "dinner"]}`}, nil
	}
}

func defaultClassifyOptions() *classifyOptions {
	return &classifyOptions{
		idColumn:          "course_id",
		titleColumn:       "course_name",
		ingredientsColumn: "ingredients",
		directionsColumn:  "cooking_directions",
	}
}

func TestClassifyTable(t *testing.T) {
	in := "course_id,course_name,ingredients,cooking_directions\n" +
		"1,Pancakes,flour^egg,\"{\"\"directions\"\": \"\"Whisk.\"\"}\"\n" +
		"2,Broken,,\n" +
		"3,Stew,beef^carrot,Simmer.\n"
	table := readTable(t, in)

	svc := classify.NewService(scriptedGenerator{})
	out, err := classifyTable(context.Background(), table, defaultClassifyOptions(), svc, batch.NewProcessor(batch.WithConcurrency(2)))
	if err != nil {
		t.Fatalf("classifyTable: %v", err)
	}

	if got := strings.Join(out.Header, ","); got != "course_id,raw_output,categories" {
		t.Errorf("header = %s", got)
	}
	want := [][]string{
		{"1", `{"categories": ["breakfast"]}`, `["breakfast"]`},
		{"2", "", "[]"},
		{"3", `{"categories": ["Lunch", "dinner"]}`, `["lunch","dinner"]`},
	}
	for i, row := range want {
		for j := range row {
			if out.Rows[i][j] != row[j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, out.Rows[i][j], row[j])
			}
		}
	}
}

func TestClassifyTableSingle(t *testing.T) {
	table := readTable(t, "course_id,course_name\n3,Stew\n")
	opts := defaultClassifyOptions()
	opts.single = true

	out, err := classifyTable(context.Background(), table, opts, classify.NewService(scriptedGenerator{}), batch.NewProcessor())
	if err != nil {
		t.Fatalf("classifyTable: %v", err)
	}
	if got := out.Rows[0][2]; got != `["lunch"]` {
		t.Errorf("categories = %q, want [\"lunch\"]", got)
	}
}

func TestClassifyTableMissingTitle(t *testing.T) {
	table := readTable(t, "id\n1\n")
	if _, err := classifyTable(context.Background(), table, defaultClassifyOptions(), classify.NewService(scriptedGenerator{}), batch.NewProcessor()); err == nil {
		t.Fatal("expected error for missing title column")
	}
}

// cancelingGenerator 遇到標題 Stop 時取消整個執行
type cancelingGenerator struct {
	cancel context.CancelFunc
}

func (g cancelingGenerator) ProcessRequest(ctx context.Context, system, prompt string) (*aiservice.Response, error) {
	if strings.Contains(prompt, "Title: Stop") {
		g.cancel()
		return nil, context.Canceled
	}
	return scriptedGenerator{}.ProcessRequest(ctx, system, prompt)
}

func readCheckpoint(t *testing.T, path string) *batch.Table {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open checkpoint: %v", err)
	}
	defer f.Close()
	table, err := batch.ReadCSV(f)
	if err != nil {
		t.Fatalf("read checkpoint: %v", err)
	}
	return table
}

func TestClassifyTableCheckpoint(t *testing.T) {
	table := readTable(t, "course_id,course_name\n1,Pancakes\n2,Stew\n3,Broken\n")
	opts := defaultClassifyOptions()
	opts.checkpoint = filepath.Join(t.TempDir(), "partial.csv")
	opts.checkpointEvery = 2

	out, err := classifyTable(context.Background(), table, opts, classify.NewService(scriptedGenerator{}), batch.NewProcessor(batch.WithConcurrency(2)))
	if err != nil {
		t.Fatalf("classifyTable: %v", err)
	}

	partial := readCheckpoint(t, opts.checkpoint)
	if len(partial.Rows) != len(out.Rows) {
		t.Fatalf("checkpoint rows = %d, want %d", len(partial.Rows), len(out.Rows))
	}
	for i := range out.Rows {
		if strings.Join(partial.Rows[i], "|") != strings.Join(out.Rows[i], "|") {
			t.Errorf("checkpoint row %d = %v, want %v", i, partial.Rows[i], out.Rows[i])
		}
	}
}

func TestClassifyTableCheckpointSurvivesCancel(t *testing.T) {
	table := readTable(t, "course_id,course_name\n1,Pancakes\n2,Stew\n3,Stop\n4,Stew\n")
	opts := defaultClassifyOptions()
	opts.checkpoint = filepath.Join(t.TempDir(), "partial.csv")
	opts.checkpointEvery = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := classify.NewService(cancelingGenerator{cancel: cancel})

	if _, err := classifyTable(ctx, table, opts, svc, batch.NewProcessor(batch.WithConcurrency(1))); err == nil {
		t.Fatal("expected error after cancel")
	}

	partial := readCheckpoint(t, opts.checkpoint)
	if len(partial.Rows) != 2 {
		t.Fatalf("checkpoint rows = %d, want 2", len(partial.Rows))
	}
	if partial.Rows[0][0] != "1" || partial.Rows[1][0] != "2" {
		t.Errorf("checkpoint ids = %s, %s", partial.Rows[0][0], partial.Rows[1][0])
	}
	if partial.Rows[0][2] != `["breakfast"]` {
		t.Errorf("row 1 categories = %q", partial.Rows[0][2])
	}
}
