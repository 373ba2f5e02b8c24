package directions

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// durationPattern 匹配 <數字><單位>，數字允許 . 或 , 作為小數點
var durationPattern = regexp.MustCompile(
	`(?i)(\d+(?:[.,]\d+)?)\s*(hours|hour|hrs|hr|h|minutes|minute|mins|min|m|seconds|second|secs|sec|s)\b`,
)

// unitFactor 各單位換算成分鐘的係數
func unitFactor(unit string) float64 {
	switch strings.ToLower(unit) {
	case "h", "hr", "hrs", "hour", "hours":
		return 60
	case "m", "min", "mins", "minute", "minutes":
		return 1
	case "s", "sec", "secs", "second", "seconds":
		return 1.0 / 60
	}
	return 0
}

// ParseDuration 將時間表達式轉換為分鐘數，nil 或空字串回傳 nil
func ParseDuration(text *string) *int {
	if text == nil {
		return nil
	}
	return ParseDurationString(*text)
}

// ParseDurationString 累加所有 <數字><單位> 片段，總和大於 0 時以四捨六入五成雙取整
//
// 比對前先做 NFKC 正規化，"20\u00a0m" 與 "２０ m" 都視為 "20 m"。
// "1 h 40 m" -> 100, "90 minutes" -> 90, "1.5 h" -> 90, "90 m 30 s" -> 90
func ParseDurationString(text string) *int {
	if text == "" {
		return nil
	}

	total := 0.0
	for _, m := range durationPattern.FindAllStringSubmatch(normalize(text), -1) {
		num, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			continue
		}
		total += num * unitFactor(m[2])
	}

	// 超出 int 範圍的總和視為無法解析
	if total <= 0 || total >= float64(math.MaxInt) {
		return nil
	}
	minutes := int(math.RoundToEven(total))
	return &minutes
}
