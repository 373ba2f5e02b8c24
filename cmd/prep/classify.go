package main

import (
	"context"
	"fmt"

	"recipe-prep/internal/core/ai/cache"
	"recipe-prep/internal/core/ai/openrouter"
	aiservice "recipe-prep/internal/core/ai/service"
	"recipe-prep/internal/core/batch"
	"recipe-prep/internal/core/classify"
	"recipe-prep/internal/infrastructure/config"
	"recipe-prep/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 分類結果欄位
var classifyHeader = []string{"course_id", "raw_output", "categories"}

// classifyOptions classify 命令參數
type classifyOptions struct {
	in                string
	out               string
	workers           int
	single            bool
	idColumn          string
	titleColumn       string
	ingredientsColumn string
	directionsColumn  string

	// checkpoint 不為空時，每完成 checkpointEvery 列就把已完成的結果寫入此檔
	checkpoint      string
	checkpointEvery int
}

// defaultCheckpointEvery 檢查點間隔列數
const defaultCheckpointEvery = 10

// NewClassifyCmd 創建 classify 命令
func NewClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label recipes as breakfast, lunch or dinner with the configured model",
		Long: `Read a processed recipe table and ask the OpenRouter model configured through
the environment (OPENROUTER_API_KEY, OPENROUTER_MODEL) to label each recipe.
The output table has course_id, raw_output and categories (a JSON list).
Rows whose call fails keep an empty raw_output and an empty list.
With --checkpoint, the rows finished so far are rewritten to that file every
--checkpoint-every rows, so an interrupted run keeps its progress.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.OpenRouter.APIKey == "" {
				return common.NewValidationError("OPENROUTER_API_KEY is required for classify")
			}

			store, err := cache.New(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			client := openrouter.NewClient(&cfg.OpenRouter)
			defer client.Close()

			svc := classify.NewService(aiservice.NewService(&cfg.OpenRouter, client, store))
			return runClassify(cmd, opts, svc)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "-", "Input CSV file (- for stdin)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "Output CSV file (- for stdout)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "Number of concurrent requests")
	cmd.Flags().BoolVar(&opts.single, "single", false, "Keep only the first category")
	cmd.Flags().StringVar(&opts.idColumn, "id-column", "course_id", "Recipe id column")
	cmd.Flags().StringVar(&opts.titleColumn, "title-column", "course_name", "Recipe title column")
	cmd.Flags().StringVar(&opts.ingredientsColumn, "ingredients-column", "ingredients", "Ingredients column (^ separated)")
	cmd.Flags().StringVar(&opts.directionsColumn, "directions-column", "cooking_directions", "Directions column")
	cmd.Flags().StringVar(&opts.checkpoint, "checkpoint", "", "Partial CSV rewritten with the finished rows while classifying")
	cmd.Flags().IntVar(&opts.checkpointEvery, "checkpoint-every", defaultCheckpointEvery, "Rows between checkpoint writes")

	return cmd
}

func runClassify(cmd *cobra.Command, opts *classifyOptions, svc *classify.Service) error {
	in, err := openInput(cmd, opts.in)
	if err != nil {
		return err
	}
	defer in.Close()

	table, err := batch.ReadCSV(in)
	if err != nil {
		return err
	}

	out, err := classifyTable(cmd.Context(), table, opts, svc, batch.NewProcessor(batch.WithConcurrency(opts.workers)))
	if err != nil {
		return err
	}

	w, err := createOutput(cmd, opts.out)
	if err != nil {
		return err
	}
	defer w.Close()

	return batch.WriteCSV(w, out)
}

// classifyTable 對每列分類並回傳結果資料表
func classifyTable(ctx context.Context, table *batch.Table, opts *classifyOptions, svc *classify.Service, bp *batch.Processor) (*batch.Table, error) {
	if table.Index(opts.titleColumn) < 0 {
		return nil, common.NewValidationError(fmt.Sprintf("column %q not found", opts.titleColumn))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	handler := func(ctx context.Context, rec *common.Record) (*common.Record, error) {
		res, err := svc.Classify(ctx, classify.Request{
			CourseID:    stringField(rec, opts.idColumn),
			Title:       stringField(rec, opts.titleColumn),
			Ingredients: stringField(rec, opts.ingredientsColumn),
			Directions:  classify.DirectionsText(stringField(rec, opts.directionsColumn)),
			AllowMulti:  !opts.single,
		})
		if err != nil {
			return nil, err
		}
		categories, err := common.ToJSON(res.Categories)
		if err != nil {
			return nil, err
		}
		return common.RecordOf(
			"course_id", stringField(rec, opts.idColumn),
			"raw_output", res.RawOutput,
			"categories", categories,
		), nil
	}

	records := table.Records()
	out := &batch.Table{Header: classifyHeader, Rows: make([][]string, 0, len(records))}

	chunk := len(records)
	if opts.checkpoint != "" && opts.checkpointEvery > 0 {
		chunk = opts.checkpointEvery
	}

	failed := 0
	for start := 0; start < len(records); start += chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+chunk, len(records))

		results, err := bp.Process(ctx, records[start:end], handler)
		if err != nil {
			return nil, err
		}
		for i, res := range results {
			if res.Err != nil {
				failed++
			}
			out.Rows = append(out.Rows, classifyRow(records[start+i], res, opts))
		}

		if opts.checkpoint != "" {
			if err := batch.WriteCSVFile(opts.checkpoint, out); err != nil {
				return nil, fmt.Errorf("write checkpoint: %w", err)
			}
			common.LogDebug("classify 檢查點已寫入", zap.String("path", opts.checkpoint), zap.Int("rows", len(out.Rows)))
		}
	}

	common.LogInfo("classify 處理完成", zap.Int("rows", len(out.Rows)), zap.Int("failed", failed))
	return out, nil
}

// classifyRow 結果轉為輸出列，失敗時保留 id 並輸出空清單
func classifyRow(rec *common.Record, res batch.Result, opts *classifyOptions) []string {
	if res.Err != nil {
		return []string{stringField(rec, opts.idColumn), "", "[]"}
	}
	row := make([]string, len(classifyHeader))
	for j, h := range classifyHeader {
		row[j] = stringField(res.Record, h)
	}
	return row
}

func stringField(rec *common.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}
