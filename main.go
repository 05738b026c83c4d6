package main

import (
	"os"

	"github.com/keketsolithane/keketso/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
