package main

import "github.com/faultlinehq/faultline/cmd/faultline/commands"

func main() {
	commands.Execute()
}
