package main

import (
	"openfeed/internal/cmd"
)

func main() {
	cmd.Run()
}
