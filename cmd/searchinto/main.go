package main

import (
	"os"
	"strings"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		// Single-line error, no usage dump.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString(msg + "\n")
		os.Exit(1)
	}
}
