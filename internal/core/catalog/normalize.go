package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minSingularLen 單數化後的最短長度，避免把短字（如 "gas"）截壞
const minSingularLen = 3

// Fold 去除前後空白、合併中間空白並轉小寫
func Fold(raw string) string {
	// Caser 有狀態，不能跨 goroutine 共用
	return cases.Lower(language.Und).String(strings.Join(strings.Fields(raw), " "))
}

// Normalize 將自由輸入的品項名稱轉為查詢鍵：Fold 後去掉結尾的複數 "s"
//
// 只有去掉後仍至少 3 個字元時才截斷。這是啟發式而非字典查詢：
// "tomatoes" 的鍵是 "tomatoe"，"es"/"ies" 的寫法交給 Variants 補上。
func Normalize(raw string) string {
	key := Fold(raw)
	if stem, ok := trimPlural(key, "s", ""); ok {
		return stem
	}
	return key
}

// Variants 回傳名稱的所有候選查詢鍵，依優先順序：原拼寫、Normalize 鍵、
// 去掉 "es" 的寫法、"ies" 換成 "y" 的寫法。空白輸入回傳 nil。
func Variants(raw string) []string {
	fold := Fold(raw)
	if fold == "" {
		return nil
	}
	out := []string{fold}
	add := func(s string) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	add(Normalize(fold))
	if stem, ok := trimPlural(fold, "es", ""); ok {
		add(stem)
	}
	if stem, ok := trimPlural(fold, "ies", "y"); ok {
		add(stem)
	}
	return out
}

func trimPlural(word, suffix, replacement string) (string, bool) {
	if !strings.HasSuffix(word, suffix) {
		return "", false
	}
	stem := strings.TrimSuffix(word, suffix) + replacement
	if len(stem) < minSingularLen {
		return "", false
	}
	return stem, true
}

// SameName 兩個名稱有任一共同候選鍵即視為同一品項
func SameName(a, b string) bool {
	va := Variants(a)
	if len(va) == 0 {
		return false
	}
	for _, v := range Variants(b) {
		if slices.Contains(va, v) {
			return true
		}
	}
	return false
}
