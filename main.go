package main

import (
	"os"

	"github.com/llehouerou/waved/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
