package main

import (
	"os"

	"github.com/yahsan2/srs-exporter/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
