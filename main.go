package main

import (
	"os"

	"github.com/milkywaygod2/sysutil/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
