package main

import "codechunk/internal/cli"

func main() {
	cli.Execute()
}
