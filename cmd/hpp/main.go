// SPDX-License-Identifier: MIT
package main

import (
	"os"

	"gitlab.com/fisherprime/hpp/cmd/hpp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
