package main

import "github.com/warrenhq/warren/cmd"

func main() {
	cmd.Execute()
}
