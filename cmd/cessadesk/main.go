package main

import (
	"os"

	"github.com/cessadesk/cessadesk/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
