package main

import (
	"github.com/jpl-au/chinookd/cmd"
)

func main() {
	cmd.Execute()
}
