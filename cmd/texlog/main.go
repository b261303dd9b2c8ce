package main

import (
	"os"

	"github.com/TimelordUK/texlog/cmd/texlog/commands"
)

func main() {
	os.Exit(commands.Execute())
}
