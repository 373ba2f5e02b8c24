// Package directions 從食譜步驟文字中分離 Prep / Cook / Ready In 標頭與內文，
// 並把各時間轉換為分鐘數。套件內所有函式都是純函式，可在多個 goroutine 中同時使用。
package directions

// Options 擷取參數
type Options struct {
	HeadWindowLines  int
	FallbackCutLines int
}

// DefaultOptions 預設擷取參數
func DefaultOptions() Options {
	return Options{
		HeadWindowLines:  DefaultHeadWindowLines,
		FallbackCutLines: DefaultFallbackCutLines,
	}
}

// Result 擷取結果，未找到的時間為 nil
type Result struct {
	PrepMinutes  *int
	CookMinutes  *int
	ReadyMinutes *int
	Body         string

	// LabelsFound 主要掃描找到的標籤數量
	LabelsFound int
	// Recovered 由開頭視窗找回的標籤
	Recovered []Label
	// Boundary 切割內文使用的標頭邊界，0 表示沒有標籤
	Boundary int
}

// Extractor 標頭擷取器
type Extractor struct {
	opts Options
}

// NewExtractor 建立擷取器，非正數的參數使用預設值
func NewExtractor(opts Options) *Extractor {
	if opts.HeadWindowLines <= 0 {
		opts.HeadWindowLines = DefaultHeadWindowLines
	}
	if opts.FallbackCutLines <= 0 {
		opts.FallbackCutLines = DefaultFallbackCutLines
	}
	return &Extractor{opts: opts}
}

var defaultExtractor = NewExtractor(DefaultOptions())

// Extract 使用預設參數擷取
func Extract(text string) Result {
	return defaultExtractor.Extract(text)
}

// Extract 掃描標頭、必要時後備搜尋、解析三個時間並清理內文
func (e *Extractor) Extract(text string) Result {
	scan := ScanHeader(text)

	values := make(map[Label]string, labelCount)
	for _, l := range Labels {
		if v, ok := scan.Value(l); ok {
			values[l] = v
		}
	}

	var recovered []Label
	if !scan.Complete() {
		missing := scan.Missing()
		found := recoverMissing(text, missing, e.opts.HeadWindowLines)
		for _, l := range missing {
			if v, ok := found[l]; ok {
				values[l] = v
				recovered = append(recovered, l)
			}
		}
	}

	return Result{
		PrepMinutes:  parseValue(values, LabelPrep),
		CookMinutes:  parseValue(values, LabelCook),
		ReadyMinutes: parseValue(values, LabelReadyIn),
		Body:         cleanBody(text, scan.Boundary, e.opts.FallbackCutLines),
		LabelsFound:  scan.Count(),
		Recovered:    recovered,
		Boundary:     scan.Boundary,
	}
}

func parseValue(values map[Label]string, l Label) *int {
	v, ok := values[l]
	if !ok {
		return nil
	}
	return ParseDurationString(v)
}
