package main

import (
	"github.com/papyri/archive/cmd"
)

func main() {
	cmd.Execute()
}
