// Command trace-analyzer charts the hour-of-day activity of known devices in
// packet captures.
package main

import (
	"fmt"
	"os"

	"github.com/mdevolde/trace-analyzer/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "trace-analyzer: %v\n", err)
		os.Exit(1)
	}
}
