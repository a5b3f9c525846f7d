package main

import "github.com/KaramelBytes/premium-explorer/cmd"

func main() {
	cmd.Execute()
}
