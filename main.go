package main

import "github.com/KaramelBytes/habitlens-cli/cmd"

func main() {
	cmd.Execute()
}
