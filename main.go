package main

import "github.com/KaramelBytes/reviewlens/cmd"

func main() {
	cmd.Execute()
}
