package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/inflate/lib/bundle"
)

func newParseCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "parse <bundle.html>",
		Short: "Show what a bundle defines",
		Long: `parse scans a bundle file and lists its style region, its definitions
with their attributes, and its behavior region. Attribute problems are
reported; with --strict they make the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			b := bundle.Parse(text)
			printBundle(cmd.OutOrStdout(), b)
			if strict && len(b.Malformed) > 0 {
				return fmt.Errorf("%d malformed definition(s)", len(b.Malformed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when attribute parsing stops early")
	return cmd
}

func readInput(name string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printBundle(w io.Writer, b *bundle.Bundle) {
	fmt.Fprintf(w, "style: %d bytes\n", len(strings.TrimSpace(b.Style)))
	fmt.Fprintf(w, "definitions: %d\n", len(b.Definitions))
	for _, d := range b.Definitions {
		fmt.Fprintf(w, "  %s", d.Name)
		for _, a := range d.Attrs {
			fmt.Fprintf(w, " %s=%q", a.Name, a.Value)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "behavior: %d bytes\n", len(strings.TrimSpace(b.Behavior)))
	for _, m := range b.Malformed {
		fmt.Fprintf(w, "malformed: %s\n", m.Error())
	}
}
