package main

import (
	"os"

	"github.com/godilite/kpi-server/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
