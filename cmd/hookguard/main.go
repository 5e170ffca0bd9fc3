package main

import (
	"os"

	"github.com/gzhole/hookguard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
