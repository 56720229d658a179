package main

import "pop-mirror/internal/cli"

func main() {
	cli.Execute()
}
