package main

import "github.com/theirongolddev/unitecon/cmd"

func main() {
	cmd.Execute()
}
