package main

import "github.com/bracken-labs/snapnote/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
