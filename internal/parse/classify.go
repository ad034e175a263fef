package parse

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chitieu/internal/catalog"
	"chitieu/internal/core"
)

// incomeSignals flips the transaction type to income when any of them
// appears in the transcript as a standalone word or phrase. First hit
// wins; the income check always runs before any expense keyword is
// considered.
var incomeSignals = []string{
	"lương",     // salary
	"nhận",      // receive
	"bán",       // sell
	"thưởng",    // bonus
	"được cho",  // being given
	"lì xì",     // lucky money
	"tiền mừng", // congratulatory money
	"hoàn tiền", // refund
}

// containsWord reports whether phrase occurs in text bounded by
// non-letter runes on both sides. A plain substring check would let
// "bán" (sell) hit inside "bánh" (bread) and turn every bánh mì
// purchase into income.
func containsWord(text, phrase string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start

		before, _ := utf8.DecodeLastRuneInString(text[:i])
		after, _ := utf8.DecodeRuneInString(text[i+len(phrase):])
		if !unicode.IsLetter(before) && !unicode.IsLetter(after) {
			return true
		}
		start = i + 1
	}
}

// Classify decides the transaction type and category for a transcript.
// The category is the first one in the type's declared order with a
// keyword contained in the lowercased text; with no match, the type's
// fallback category is returned. Never returns an empty category.
func Classify(text string) (core.TransactionType, catalog.Category) {
	lower := strings.ToLower(text)

	typ := core.Expense
	for _, signal := range incomeSignals {
		if containsWord(lower, signal) {
			typ = core.Income
			break
		}
	}

	for _, c := range catalog.ByType(typ) {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return typ, c
			}
		}
	}
	return typ, catalog.Fallback(typ)
}
