package classify

import (
	"fmt"
	"strings"
)

// 可用的餐別標籤
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
)

// SystemPrompt 分類使用的系統訊息
const SystemPrompt = "You classify recipes by meal time and answer strictly in JSON."

// allowedCategories 允許的標籤集合
var allowedCategories = map[string]bool{
	CategoryBreakfast: true,
	CategoryLunch:     true,
	CategoryDinner:    true,
}

// ingredientSeparator 原始資料中食材以 ^ 連接
const ingredientSeparator = "^"

// NormalizeIngredients 將 ^ 分隔的食材改為逗號分隔
func NormalizeIngredients(ingredients string) string {
	return strings.ReplaceAll(ingredients, ingredientSeparator, ", ")
}

// BuildPrompt 組合分類提示
func BuildPrompt(title, ingredients, directions string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", title)
	fmt.Fprintf(&sb, "Ingredients: %s\n", ingredients)
	fmt.Fprintf(&sb, "Directions: %s\n", directions)
	sb.WriteString("\n")
	sb.WriteString("Classify this recipe into one or more of the following categories:\n")
	sb.WriteString("- Breakfast\n")
	sb.WriteString("- Lunch\n")
	sb.WriteString("- Dinner\n")
	sb.WriteString("\n")
	sb.WriteString("Respond **only** with JSON in the form:\n")
	sb.WriteString(`{"categories": ["breakfast", "lunch"]}` + "\n")
	sb.WriteString("If only one applies, return a single-item list. Use only these labels.")
	return sb.String()
}
