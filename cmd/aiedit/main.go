// Command aiedit is the AI image editing workspace CLI.
package main

import (
	"os"

	"github.com/chenyangcun/aiedit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
