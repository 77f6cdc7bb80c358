package main

import (
	"os"

	"github.com/diffdeck/diffdeck/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
