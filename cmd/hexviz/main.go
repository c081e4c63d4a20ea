// Package main is the hexviz command itself.
package main

import (
	"log"
	"os"

	"github.com/ggldnl/hexviz/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
