package main

import "github.com/rankpulse/rankpulse/pkg/cli"

func main() {
	cli.Execute()
}
