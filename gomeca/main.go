package main

import "github.com/ocfl-archive/gomeca/gomeca/cmd"

func main() {
	cmd.Execute()
}
