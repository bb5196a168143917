package main

import "github.com/mselser95/sharpline/cmd"

func main() {
	cmd.Execute()
}
