package parse

import "chitieu/internal/core"

// Confidence is the fixed score attached to every successful parse.
// The system does not compute a real confidence metric.
const Confidence = 0.8

// Interpret runs the full transcript-to-result pipeline. It returns
// nil when no amount could be extracted; that is the only failure the
// pipeline distinguishes. The result keeps the transcript verbatim as
// its description and is dated today.
func Interpret(transcript string) *core.ParseResult {
	amount := ExtractAmount(transcript)
	if amount <= 0 {
		return nil
	}

	typ, category := Classify(transcript)

	return &core.ParseResult{
		Type:         typ,
		Amount:       amount,
		Description:  transcript,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Date:         core.Today(),
		Confidence:   Confidence,
	}
}
