package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/record-formula/pkg/catalog"
	"github.com/lemonberrylabs/record-formula/pkg/formula"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "formula",
		Short:        "Parse and serve record formulas",
		SilenceUsage: true,
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("formula version {{.Version}}\n")

	root.AddCommand(newTokenizeCmd(), newParseCmd(), newCheckCmd(), newServeCmd())
	return root
}

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize FORMULA",
		Short: "Print the tokens of a formula, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, tok := range formula.Tokenize(args[0]) {
				fmt.Fprintf(out, "%d\t%s\n", tok.Pos, tok)
			}
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FORMULA",
		Short: "Parse a formula and print its canonical form or tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			if output != "text" && output != "json" && output != "yaml" {
				return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
			}

			expr, err := formula.ParseExpr(args[0])
			if err != nil {
				printSyntaxError(cmd.ErrOrStderr(), err)
				return err
			}
			return writeExpr(cmd.OutOrStdout(), expr, output)
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func writeExpr(w io.Writer, expr formula.Expr, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(formula.Encode(expr))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(formula.Encode(expr)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, expr.String())
		return err
	}
}

// printSyntaxError shows the formula with a caret under the failing column.
func printSyntaxError(w io.Writer, err error) {
	var se *formula.SyntaxError
	if !errors.As(err, &se) || strings.ContainsAny(se.Input, "\n\r") || utf8.RuneCountInString(se.Input) > 120 {
		return
	}
	fmt.Fprintf(w, "  %s\n  %s^\n", se.Input, strings.Repeat(" ", se.Column()-1))
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Load formula catalogs and report every error",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			verbose, _ := cmd.Flags().GetBool("verbose")
			show, _ := cmd.Flags().GetString("show")
			failed := 0
			for _, path := range args {
				cat, err := catalog.LoadFile(path)
				if err != nil {
					failed++
					var el *catalog.ErrorList
					if errors.As(err, &el) {
						for _, e := range el.Errors {
							fmt.Fprintln(out, e)
						}
					} else {
						fmt.Fprintf(out, "%s: %v\n", path, err)
					}
					continue
				}
				fmt.Fprintf(out, "ok\t%s (%d formulas)\n", path, len(cat.Entries))
				if verbose {
					for _, name := range cat.Names() {
						fmt.Fprintf(out, "\t%s\n", name)
					}
				}
				if show != "" {
					if e, ok := cat.Lookup(show); ok {
						fmt.Fprintf(out, "\t%s = %s\n", e.Name, e.Expr)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d catalog(s) failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "List the formula names of each catalog")
	cmd.Flags().String("show", "", "Print the canonical form of the named formula")
	return cmd
}
