package main

import (
	"fmt"
	"os"

	"github.com/hayeah/dircat"
)

func main() {
	args := dircat.ParseArgs()

	app, err := dircat.InitCLI(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
