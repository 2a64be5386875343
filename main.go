package main

import "github.com/fcelec/cablesize/cmd"

func main() {
	cmd.Execute()
}
