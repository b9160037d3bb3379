package main

import "github.com/nodalfe/gofeval/cmd"

func main() {
	cmd.Execute()
}
