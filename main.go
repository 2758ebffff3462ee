package main

import "github.com/brogergvhs/lntracker/cmd"

func main() {
	cmd.Execute()
}
