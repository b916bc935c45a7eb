package main

import "github.com/eventfoto/face-indexer/cmd"

func main() {
	cmd.Execute()
}
