package main

import (
	"os"

	"github.com/grovetools/cydantic/cli"
	"github.com/grovetools/cydantic/cmd"
	"github.com/grovetools/cydantic/theme"
)

func main() {
	theme.InitializeColor()

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
