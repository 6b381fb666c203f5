package main

import (
	"github.com/ubreblanca/vscode-py-sig-lens/internal/cli"
)

func main() {
	cli.Execute()
}
