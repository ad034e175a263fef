// Package parse turns a free-form Vietnamese transcript into a
// structured parse result: an amount, a transaction type and a
// category. Everything here is pure and reentrant.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Rule order matters: a unit-marked number always beats a bare one.
// "mua 2 cái giá 50k" must yield 50000, never 2.
var (
	// number + thousand word, accented or not ("100 nghìn", "100 ngàn")
	reThousandWord = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:nghìn|nghin|ngàn|ngan)`)
	// number + bare k suffix ("35k")
	reThousandK = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*k\b`)
	// number + million word ("1.5 triệu", "2 trieu")
	reMillion = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:triệu|trieu)`)
	// thousand-separated digit groups: 1-3 leading digits then groups of
	// exactly 3 ("120.000", "1,250,000"), or a plain 1-3 digit number
	reGrouped = regexp.MustCompile(`\b\d{1,3}(?:[.,]\d{3})*\b`)

	sepStripper = strings.NewReplacer(".", "", ",", "")
)

// ExtractAmount extracts a monetary amount from the transcript,
// in the smallest currency unit. It returns 0 when no amount is
// recognizable; callers must treat 0 as "not found", not as a valid
// zero-value amount.
func ExtractAmount(text string) int64 {
	lower := strings.ToLower(text)

	if m := reThousandWord.FindStringSubmatch(lower); m != nil {
		return scaled(m[1], 1_000)
	}
	if m := reThousandK.FindStringSubmatch(lower); m != nil {
		return scaled(m[1], 1_000)
	}
	if m := reMillion.FindStringSubmatch(lower); m != nil {
		return scaled(m[1], 1_000_000)
	}

	// No magnitude marker: take the largest grouped number mentioned.
	// In spoken phrases the biggest number is almost always the price;
	// the small ones are quantities.
	var best int64
	for _, g := range reGrouped.FindAllString(lower, -1) {
		v, err := strconv.ParseInt(sepStripper.Replace(g), 10, 64)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}

// scaled parses a number that may use either "." or "," as its decimal
// separator and multiplies it by the magnitude.
func scaled(num string, magnitude float64) int64 {
	num = strings.ReplaceAll(num, ",", ".")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * magnitude))
}
