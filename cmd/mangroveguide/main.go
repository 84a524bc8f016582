package main

import "github.com/diogo/mangroveguide/internal/commands"

func main() {
	commands.Execute()
}
