package main

import "cmtgen/cmd"

func main() {
	cmd.Execute()
}
