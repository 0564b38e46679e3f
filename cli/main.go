package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fluxbase-eu/bundlebudget/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Budget violations have already been reported
		if !errors.Is(err, cmd.ErrBudgetExceeded) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
