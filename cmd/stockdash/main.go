package main

import "stockdash/internal/cli"

func main() {
	cli.Execute()
}
