package main

import "github.com/FranksOps/serpkeep/cmd"

func main() {
	cmd.Execute()
}
