package main

import (
	"fmt"
	"os"

	"github.com/rushteam/rentprice/core"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Estimate produced
	ExitInvalid     = 1 // Request rejected (missing bedrooms / property type)
	ExitUnavailable = 3 // No model and no comparables
	ExitError       = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case core.IsInvalidRequest(err):
		return ExitInvalid
	case core.IsEstimationUnavailable(err):
		return ExitUnavailable
	default:
		return ExitError
	}
}
