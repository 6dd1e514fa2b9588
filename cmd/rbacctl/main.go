package main

import (
	"os"
)

func main() {
	if err := newRootCmd(connect).Execute(); err != nil {
		os.Exit(1)
	}
}
