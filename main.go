package main

import "github.com/andrewpaige1/accent-api/cmd"

func main() {
	cmd.Execute()
}
