package main

import (
	"github.com/somnolab/somno/internal/cli"
)

func main() {
	cli.Execute()
}
