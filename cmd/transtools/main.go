package main

import "transtools/internal/cli"

func main() {
	cli.Execute()
}
