package main

import "preop-drug-check/internal/cli"

func main() {
	cli.Execute()
}
