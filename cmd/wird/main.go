package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/wird/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wird: %v\n", err)
		os.Exit(1)
	}
}
