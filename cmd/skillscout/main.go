package main

import (
	"github.com/emiliopalmerini/skillscout/internal/cli"
)

func main() {
	cli.Execute()
}
