package main

import "github.com/jonghae5/stock-cli/internal/cli"

func main() {
	cli.Execute()
}
