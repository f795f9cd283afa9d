package main

import (
	"os"

	"github.com/ricirt/devlog-poster/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
