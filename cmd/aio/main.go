package main

import "aio/cmd/aio/cmd"

func main() {
	cmd.Execute()
}
