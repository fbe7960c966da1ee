// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hlscc/internal/blockspec"
	"hlscc/internal/errors"
	"hlscc/internal/ir"
	"hlscc/internal/parser"
	"hlscc/internal/translate"
)

var (
	flagTop     string
	flagPackage string
	flagBlock   string
	flagOutput  string
)

func main() {
	root := &cobra.Command{
		Use:           "hlscc",
		Short:         "hlscc compiles an HLC source file into dataflow IR",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	build := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a source file and print its IR",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	build.Flags().StringVar(&flagTop, "top", "", "top function name, overrides #pragma hls_top")
	build.Flags().StringVar(&flagPackage, "package", "", "name of the generated IR package")
	build.Flags().StringVar(&flagBlock, "block", "", "YAML block spec, switches output to a proc")
	build.Flags().StringVarP(&flagOutput, "output", "o", "", "write IR to a file instead of stdout")

	check := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and translate without printing IR",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	check.Flags().StringVar(&flagTop, "top", "", "top function name, overrides #pragma hls_top")
	check.Flags().StringVar(&flagBlock, "block", "", "YAML block spec, switches output to a proc")

	root.AddCommand(build, check)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func compile(path string) (*ir.Package, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	unit, err := parser.ParseSource(path, string(source))
	if err != nil {
		report(path, string(source), err)
		return nil, err
	}
	opts := translate.Options{Top: flagTop, Package: flagPackage}
	if flagBlock != "" {
		spec, err := blockspec.Load(flagBlock)
		if err != nil {
			return nil, err
		}
		opts.Block = spec
	}
	pkg, err := translate.Translate(unit, opts)
	if err != nil {
		report(path, string(source), err)
		return nil, err
	}
	return pkg, nil
}

func report(path, source string, err error) {
	fmt.Fprint(os.Stderr, errors.NewReporter(path, source).Format(err))
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	path := args[0]

	pkg, err := compile(path)
	if err != nil {
		color.Red("Compilation failed after %s", formatDuration(time.Since(start)))
		return err
	}

	text := ir.Print(pkg)
	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(text), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Print(text)
	}
	color.Green("Compiled %s in %s", path, formatDuration(time.Since(start)))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()
	path := args[0]

	if _, err := compile(path); err != nil {
		color.Red("Compilation failed after %s", formatDuration(time.Since(start)))
		return err
	}
	color.Green("No errors in %s (%s)", path, formatDuration(time.Since(start)))
	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
