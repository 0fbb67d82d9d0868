package main

import "github.com/khrees2412/pathweiz/cmd"

func main() {
	cmd.Execute()
}
