package main

import (
	"editoria/cmd/cmd"
)

func main() {
	cmd.Execute()
}
