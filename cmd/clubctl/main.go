package main

import "github.com/mcoot/clubhouse/internal/cli"

func main() {
	cli.Execute()
}
