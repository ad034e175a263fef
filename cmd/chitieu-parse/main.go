// chitieu-parse interprets a single Vietnamese phrase from the command
// line and prints the parsed transaction as JSON.
//
// Usage:
//
//	chitieu-parse "Mua cafe 35 nghìn"
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"chitieu/internal/core"
	"chitieu/internal/parse"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: chitieu-parse <transcript>")
		os.Exit(2)
	}

	transcript := strings.Join(os.Args[1:], " ")
	result := parse.Interpret(transcript)
	if result == nil {
		fmt.Fprintln(os.Stderr, "no amount found in transcript")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, "encode result:", err)
		os.Exit(1)
	}

	// Human-readable summary on stderr so stdout stays pipeable.
	fmt.Fprintf(os.Stderr, "%s %s (%s)\n",
		result.Type, core.FormatVND(result.Amount), result.CategoryName)
}
