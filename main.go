package main

import "github.com/smoors/test-suite/cmd"

func main() {
	cmd.Execute()
}
