package main

import "github.com/BatmanBruc/yt-audio-bot/cmd"

func main() {
	cmd.Execute()
}
