// Command matchctl inspects the matching pipeline offline: normalization,
// list segmentation and the matcher cascade against a catalog file.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"corralon_backend/internal/auth/service"
	"corralon_backend/internal/catalog"
	"corralon_backend/internal/intent"
	"corralon_backend/internal/matcher"
	"corralon_backend/internal/quantity"
	"corralon_backend/internal/segment"
	"corralon_backend/internal/textnorm"
	"corralon_backend/internal/vocab"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var vocabPath string

	root := &cobra.Command{
		Use:          "matchctl",
		Short:        "Inspect the product matching pipeline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&vocabPath, "vocab", os.Getenv("MATCHER_CONFIG"), "vocabulary YAML applied over the embedded defaults")

	root.AddCommand(
		newNormalizeCmd(&vocabPath),
		newSegmentCmd(),
		newMatchCmd(&vocabPath),
		newHashPasswordCmd(),
	)
	return root
}

func newNormalizeCmd(vocabPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text...>",
		Short: "Print the normalized form of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vocab.Load(*vocabPath)
			if err != nil {
				return err
			}
			norm := textnorm.New(v.Lexicon, nil)
			fmt.Fprintln(cmd.OutOrStdout(), norm.Normalize(strings.Join(args, " ")))
			return nil
		},
	}
}

func newSegmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segment [text...]",
		Short: "Split a message into request lines (reads stdin without arguments)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "list: %t\n", segment.IsLikelyList(text))
			for i, line := range segment.Segment(text) {
				qty, rest := quantity.Extract(line)
				fmt.Fprintf(out, "%2d. %-40s qty=%g product=%q\n", i+1, line, qty, rest)
			}
			return nil
		},
	}
}

func newMatchCmd(vocabPath *string) *cobra.Command {
	var catalogPath string
	var explain bool

	cmd := &cobra.Command{
		Use:   "match --catalog <file.json> <line...>",
		Short: "Run the matcher cascade for each line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := vocab.Load(*vocabPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			items, err := catalog.NewFileProvider(catalogPath).ListCatalog(ctx)
			if err != nil {
				return err
			}
			snap := catalog.NewSnapshot(items, time.Now())
			m := matcher.New(v.Matcher, textnorm.New(v.Lexicon, nil))

			out := cmd.OutOrStdout()
			for _, raw := range args {
				folded := intent.StripFiller(textnorm.SpokenToDigits(textnorm.Fold(raw)))
				qty, line := quantity.Extract(m.Normalize(folded))
				res, trace := m.Explain(line, snap, qty)
				printResult(out, raw, res)
				if explain {
					printTrace(out, trace)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_FILE"), "catalog JSON file")
	cmd.Flags().BoolVar(&explain, "explain", true, "print the candidates of every stage")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			pw = strings.TrimRight(pw, "\r\n")
			if pw == "" {
				return fmt.Errorf("empty password")
			}
			hash, err := service.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func inputText(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printResult(out io.Writer, raw string, res matcher.Result) {
	switch r := res.(type) {
	case matcher.Accepted:
		fmt.Fprintf(out, "%q -> accepted [%s %.2f] %g x %s\n", raw, r.By, r.Score, r.Qty, catalog.DisplayTitle(r.Item, r.Variant))
	case matcher.Clarify:
		fmt.Fprintf(out, "%q -> clarify [%s %.2f] %s\n", raw, r.By, r.Score, r.Clarification.Question)
		for i, opt := range r.Clarification.Options {
			fmt.Fprintf(out, "    %d) %s\n", i+1, opt.Title)
		}
	case matcher.NotFound:
		fmt.Fprintf(out, "%q -> not found (%q)\n", raw, r.Line)
	}
}

func printTrace(out io.Writer, tr *matcher.Trace) {
	if tr == nil {
		return
	}
	fmt.Fprintf(out, "    normalized: %q\n", tr.Normalized)
	fmt.Fprintf(out, "    terms: %v strong: %v\n", tr.Terms, tr.Strong)
	for _, step := range tr.Steps {
		fmt.Fprintf(out, "    [%s]\n", step.Stage)
		for _, c := range step.Candidates {
			fmt.Fprintf(out, "      %.3f  %s\n", c.Score, c.Title)
		}
	}
}
