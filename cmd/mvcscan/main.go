package main

import "mvcscan/internal/cli"

func main() {
	cli.Execute()
}
