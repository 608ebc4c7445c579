package main

import "couple-backend/cmd"

func main() {
	cmd.Run()
}
