package main

import "flashwash/internal/cli"

func main() {
	cli.Execute()
}
