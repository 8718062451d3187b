package main

import "lootradar/internal/cli"

func main() {
	cli.Execute()
}
