package main

import (
	"os"

	"github.com/odq/triagem/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
