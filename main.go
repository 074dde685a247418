package main

import (
	"os"

	"github.com/xiaot623/decision-timeline/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
