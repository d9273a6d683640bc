package main

import (
	"os"

	"github.com/stancelab/stancesweep/cmd/stancesweep"
)

func main() {
	if err := stancesweep.Execute(); err != nil {
		os.Exit(1)
	}
}
