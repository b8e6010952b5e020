package main

import (
	"os"

	"seqplan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
