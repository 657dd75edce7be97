package main

import "mad-scanner/internal/cli"

func main() {
	cli.Execute()
}
