package main

import "github.com/tendant/voicehub/cmd/voicehub/cmd"

func main() {
	cmd.Execute()
}
