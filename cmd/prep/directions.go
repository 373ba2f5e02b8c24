package main

import (
	"context"
	"fmt"
	"strconv"

	"recipe-prep/internal/core/batch"
	"recipe-prep/internal/core/directions"
	"recipe-prep/internal/core/prep"
	"recipe-prep/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 輸出的分鐘欄位
const (
	columnPrepMin  = "prep_min"
	columnCookMin  = "cook_min"
	columnReadyMin = "ready_min"
)

// directionsOptions directions 命令參數
type directionsOptions struct {
	in          string
	out         string
	column      string
	workers     int
	headWindow  int
	fallbackCut int
}

// NewDirectionsCmd 創建 directions 命令
func NewDirectionsCmd() *cobra.Command {
	opts := &directionsOptions{}

	cmd := &cobra.Command{
		Use:   "directions",
		Short: "Extract durations and clean the directions column of a CSV",
		Long: `Read a recipe table, extract the Prep / Cook / Ready In durations from the
directions column and write the table back with:

  <column>           the cleaned mapping, JSON encoded
  <column>_original  the untouched input value
  prep_min, cook_min, ready_min  minutes, empty when absent

Rows are processed concurrently and written in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDirections(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "-", "Input CSV file (- for stdin)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "Output CSV file (- for stdout)")
	cmd.Flags().StringVarP(&opts.column, "column", "c", "cooking_directions", "Directions column name")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 8, "Number of concurrent workers")
	cmd.Flags().IntVar(&opts.headWindow, "head-window", directions.DefaultHeadWindowLines, "Lines searched when a label is missing")
	cmd.Flags().IntVar(&opts.fallbackCut, "fallback-cut", directions.DefaultFallbackCutLines, "Lines dropped when the header boundary is unknown")

	return cmd
}

func runDirections(cmd *cobra.Command, opts *directionsOptions) error {
	in, err := openInput(cmd, opts.in)
	if err != nil {
		return err
	}
	defer in.Close()

	table, err := batch.ReadCSV(in)
	if err != nil {
		return err
	}

	processor := prep.NewProcessor(opts.column, directions.Options{
		HeadWindowLines:  opts.headWindow,
		FallbackCutLines: opts.fallbackCut,
	})
	stats, err := processDirectionsTable(cmd.Context(), table, processor, batch.NewProcessor(batch.WithConcurrency(opts.workers)))
	if err != nil {
		return err
	}

	out, err := createOutput(cmd, opts.out)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := batch.WriteCSV(out, table); err != nil {
		return err
	}

	common.LogInfo("directions 處理完成",
		zap.Int("rows", stats.rows),
		zap.Int("with_header", stats.withHeader),
		zap.Int("failed", stats.failed),
	)
	return nil
}

// directionsStats 處理統計
type directionsStats struct {
	rows       int
	withHeader int
	failed     int
}

// processDirectionsTable 就地改寫資料表
func processDirectionsTable(ctx context.Context, table *batch.Table, processor *prep.Processor, bp *batch.Processor) (directionsStats, error) {
	column := processor.Field()
	col := table.Index(column)
	if col < 0 {
		return directionsStats{}, common.NewValidationError(fmt.Sprintf("column %q not found", column))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	records := table.Records()
	for _, rec := range records {
		// 空白儲存格視為沒有步驟
		if v, _ := rec.Get(column); v == "" {
			rec.Set(column, nil)
		}
	}

	results, err := bp.Process(ctx, records, processor.Handle)
	if err != nil {
		return directionsStats{}, err
	}

	originalCol := table.EnsureColumn(column + "_original")
	prepCol := table.EnsureColumn(columnPrepMin)
	cookCol := table.EnsureColumn(columnCookMin)
	readyCol := table.EnsureColumn(columnReadyMin)

	stats := directionsStats{rows: len(results)}
	for i, res := range results {
		row := table.Rows[i]
		original := row[col]
		row[originalCol] = original

		if res.Err != nil {
			stats.failed++
			row[prepCol], row[cookCol], row[readyCol] = "", "", ""
			continue
		}

		cell, err := directionsCell(res.Record, column)
		if err != nil {
			common.LogWarn("無法輸出步驟欄位", zap.Int("row", i+1), zap.Error(err))
			stats.failed++
			continue
		}
		row[col] = cell

		prepMin := minutesCell(res.Record, prep.FieldPrepMinutes)
		cookMin := minutesCell(res.Record, prep.FieldCookMinutes)
		readyMin := minutesCell(res.Record, prep.FieldReadyMinutes)
		row[prepCol], row[cookCol], row[readyCol] = prepMin, cookMin, readyMin
		if prepMin != "" || cookMin != "" || readyMin != "" {
			stats.withHeader++
		}
	}
	return stats, nil
}

// directionsCell 以 JSON 輸出清理後的映射，沒有步驟時為空字串
func directionsCell(rec *common.Record, column string) (string, error) {
	v, _ := rec.Get(column)
	mapping, ok := v.(*common.Record)
	if !ok || mapping == nil {
		return "", nil
	}
	return common.ToJSON(mapping)
}

func minutesCell(rec *common.Record, field string) string {
	v, _ := rec.Get(field)
	if m, ok := v.(*int); ok && m != nil {
		return strconv.Itoa(*m)
	}
	return ""
}
