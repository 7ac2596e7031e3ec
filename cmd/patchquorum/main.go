package main

import (
	"os"

	"github.com/Dicklesworthstone/patchquorum/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
