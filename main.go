package main

import "github.com/zjrosen/circ/cmd"

func main() {
	cmd.Execute()
}
