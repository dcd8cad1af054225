package main

import "github.com/mminutillo-nflx/vibe-probe/cmd"

func main() {
	cmd.Execute()
}
