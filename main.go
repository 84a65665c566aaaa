package main

import "github.com/tilefetch/tilefetch/cmd"

func main() {
	cmd.Execute()
}
