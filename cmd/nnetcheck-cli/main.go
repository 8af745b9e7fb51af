// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"nnetcheck/internal/analysis"
	"nnetcheck/internal/check"
	"nnetcheck/internal/errors"
	"nnetcheck/internal/parser"
)

func main() {
	rewriteCheck := flag.Bool("rewrite-check", true,
		"run the rewrite-safety pass (disable after storage-reuse optimization)")
	dump := flag.Bool("dump", false,
		"print command attributes and matrix access logs")
	verbose := flag.Bool("v", false, "verbose stage logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: nnetcheck-cli [flags] <file.comp>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
	log := commonlog.GetLogger("nnetcheck")

	startTime := time.Now()
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	reporter := errors.NewReporter(path, string(source))

	log.Info("parsing", "path", path)
	comp, net, err := parser.Parse(path, string(source))
	if err != nil {
		printDiagnostic(reporter, err)
		color.Red("Analysis failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}
	log.Info("parsed", "matrices", len(comp.Matrices)-1,
		"submatrices", len(comp.Submatrices)-1, "commands", len(comp.Commands))

	log.Info("checking")
	checker := check.NewChecker(check.Options{CheckRewrite: *rewriteCheck}, net, comp)
	checkErr := checker.Check()
	for _, warning := range checker.Warnings() {
		fmt.Print(reporter.Format(warning))
	}
	if checkErr != nil {
		printDiagnostic(reporter, checkErr)
		color.Red("Analysis failed after %s", formatDuration(time.Since(startTime)))
		os.Exit(1)
	}

	if *dump {
		an := checker.Analyzer()
		comp.Print(os.Stdout)
		analysis.PrintCommandAttributes(os.Stdout, an.CommandAttributes)
		analysis.PrintMatrixAccesses(os.Stdout, an.MatrixAccesses)
	}

	color.Green("Successfully checked %s in %s", path, formatDuration(time.Since(startTime)))
}

func printDiagnostic(reporter *errors.Reporter, err error) {
	if d, ok := err.(errors.Diagnostic); ok {
		fmt.Print(reporter.Format(d))
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func formatDuration(d time.Duration) string {
	switch {
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
