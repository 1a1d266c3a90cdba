package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Messages come in three kinds: success, error and info.

func printSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func printInfo(format string, args ...any) {
	fmt.Fprintf(os.Stdout, "· "+format+"\n", args...)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "✗ %v\n", err)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
