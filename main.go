package main

import "revision-validator/cmd"

func main() {
	cmd.Execute()
}
