package main

import (
	"os"

	"github.com/gfdmit/web-forum/board-service/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
