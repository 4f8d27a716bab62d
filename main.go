package main

import "github.com/promptgate/apiserver/cmd"

func main() {
	cmd.Execute()
}
