package main

import "gamedat-translator/internal/cli"

func main() {
	cli.Execute()
}
