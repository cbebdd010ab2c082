package main

import (
	"os"

	"github.com/fairyhunter13/project-planner/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
