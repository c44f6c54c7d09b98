// Command clausewitzcat is a debug tool: parse a Clausewitz-dialect file
// and either dump its value tree or print a formatted parse error, per
// SPEC_FULL.md §6.2. It is dev tooling, not a library deliverable — the
// library itself (package clausewitz) never shells out to a CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vippsas/clausewitz"
	"github.com/vippsas/clausewitz/clzerr"
)

var (
	asYAML       bool
	contextLines int
	log          = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:          "clausewitzcat <file>",
	Short:        "clausewitzcat",
	Long:         `Parse a Clausewitz-dialect file and print its value tree, or a formatted error.`,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
	RunE:         run,
}

func Execute() error {
	rootCmd.Flags().BoolVar(&asYAML, "yaml", false, "marshal the value tree to YAML instead of the default repr dump")
	rootCmd.Flags().IntVar(&contextLines, "context", 2, "source lines of context to print around a parse error")
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("clausewitzcat: %w", err)
	}

	v, perr := clausewitz.ParseValue(string(data))
	if perr != nil {
		printError(path, perr)
		return perr
	}

	if asYAML {
		out, err := yaml.Marshal(toYAMLShape(v))
		if err != nil {
			return fmt.Errorf("clausewitzcat: marshal yaml: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}
	fmt.Println(clausewitz.Dump(v))
	return nil
}

func printError(path string, err error) {
	log.WithFields(logrus.Fields{
		"file": path,
	}).Error("clausewitzcat: parse failed")
	if ce, ok := err.(*clzerr.Error); ok {
		// ParseValue already attached a default-sized context; replace it
		// with one of the requested size.
		ce.Context = nil
		ce = ce.WithContext(mustRead(path), contextLines)
		fmt.Fprintln(os.Stderr, ce.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}

func mustRead(path string) string {
	data, _ := os.ReadFile(path)
	return string(data)
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
