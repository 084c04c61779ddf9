package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/cmd/cli/casefile"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	// A missing .env file is fine, the CLI needs no secrets.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(casefile.Group)
	rootCmd.AddCommand(casefile.Show, casefile.Play, casefile.Stats)
}

var rootCmd = &cobra.Command{
	Use:   "whodunit-cli",
	Short: "Daily murder mysteries in the terminal",
	Long:  `Command line utilities for Whodunit https://github.com/myrjola/whodunit`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
