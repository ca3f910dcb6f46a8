package main

import (
	"os"

	"surveycli/internal/console"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		console.NewRenderer(os.Stderr).Errorf("%v", err)
		os.Exit(1)
	}
}
