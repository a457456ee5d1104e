package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/greetd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "greetd: %v\n", err)
		os.Exit(1)
	}
}
