package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"recipe-prep/internal/pkg/common"
)

// Table CSV 資料表
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV 讀取含表頭的 CSV，欄位數不一致的列以空字串補齊或截斷
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, common.NewValidationError("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := &Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, fitRow(row, len(header)))
	}
	return t, nil
}

// WriteCSV 寫出資料表
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteCSVFile 先寫入同目錄的暫存檔再改名，讀取端不會看到寫到一半的檔案
func WriteCSVFile(path string, t *Table) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Index 欄位位置，不存在時回傳 -1
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// EnsureColumn 回傳欄位位置，不存在時附加到最後並為每列補上空值
func (t *Table) EnsureColumn(column string) int {
	if i := t.Index(column); i >= 0 {
		return i
	}
	t.Header = append(t.Header, column)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Header) - 1
}

// Records 將每列轉為以表頭為鍵的資料列
func (t *Table) Records() []*common.Record {
	records := make([]*common.Record, len(t.Rows))
	for i, row := range t.Rows {
		rec := common.NewRecord()
		for j, h := range t.Header {
			rec.Set(h, row[j])
		}
		records[i] = rec
	}
	return records
}

func fitRow(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
