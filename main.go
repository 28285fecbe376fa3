package main

import (
	"os"

	"github.com/PeterBassett/Compiler-sub001/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
