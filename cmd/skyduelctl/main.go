package main

import "github.com/skyduel/skyduel/internal/cli"

func main() {
	cli.Execute()
}
