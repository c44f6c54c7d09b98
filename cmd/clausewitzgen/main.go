// Command clausewitzgen loads Go packages, finds struct declarations with a
// clausewitz:"...,dup" field, and writes a clausewitz_gen.go defining a
// reflection-free RecordVisitor for each, per SPEC_FULL.md §4.6. Intended
// to run from a go:generate directive.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vippsas/clausewitz/codegen"
)

var (
	dir string
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:          "clausewitzgen [packages...]",
	Short:        "clausewitzgen",
	Long:         `Generate reflection-free duplicate-collector record visitors for tagged structs.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"./..."}
		}
		return codegen.WriteAll(log, dir, args...)
	},
}

func Execute() error {
	rootCmd.Flags().StringVarP(&dir, "directory", "d", ".", "directory to load packages relative to")
	return rootCmd.Execute()
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
