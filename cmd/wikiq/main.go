package main

import "wikiq/cmd/wikiq/commands"

func main() {
	commands.Execute()
}
