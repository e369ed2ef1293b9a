package main

import (
	"os"

	"github.com/futureCreator/tutorgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
