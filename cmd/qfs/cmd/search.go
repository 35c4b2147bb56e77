package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qfs-dev/qfs/internal/search"
	"github.com/qfs-dev/qfs/internal/ui"
)

type searchFlags struct {
	collection    string
	limit         int
	minScore      float64
	includeBinary bool
	jsonOutput    bool
}

func addSearchFlags(cmd *cobra.Command, f *searchFlags) {
	cmd.Flags().StringVarP(&f.collection, "collection", "c", "", "restrict results to this collection, all collections if omitted")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 20, "maximum number of results")
	cmd.Flags().Float64Var(&f.minScore, "min-score", 0, "drop results scoring below this threshold")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "output as JSON")
}

func newSearchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Lexical BM25 search over indexed collections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchCmd(cmd, search.ModeBM25, strings.Join(args, " "), f)
		},
	}
	addSearchFlags(cmd, &f)
	cmd.Flags().BoolVar(&f.includeBinary, "include-binary", false, "include binary files in results")
	return cmd
}

func newVSearchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "vsearch <query>",
		Short: "Dense vector search over indexed collections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchCmd(cmd, search.ModeVector, strings.Join(args, " "), f)
		},
	}
	addSearchFlags(cmd, &f)
	return cmd
}

func newQueryCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Hybrid BM25 + vector search, fused with Reciprocal Rank Fusion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchCmd(cmd, search.ModeHybrid, strings.Join(args, " "), f)
		},
	}
	addSearchFlags(cmd, &f)
	return cmd
}

func runSearchCmd(cmd *cobra.Command, mode search.Mode, query string, f searchFlags) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	results, err := e.searcher(ctx).Search(ctx, search.Options{
		Mode:          mode,
		Query:         query,
		Collection:    f.collection,
		IncludeBinary: f.includeBinary,
		Limit:         f.limit,
		MinScore:      f.minScore,
	})
	if err != nil {
		return err
	}

	if f.jsonOutput {
		return writeSearchJSON(cmd.OutOrStdout(), results)
	}
	return writeSearchTable(cmd.OutOrStdout(), results)
}

func writeSearchJSON(w io.Writer, results []search.Result) error {
	type row struct {
		Docid      string  `json:"docid"`
		Collection string  `json:"collection"`
		Path       string  `json:"path"`
		Title      string  `json:"title"`
		Score      float64 `json:"score"`
		Snippet    string  `json:"snippet,omitempty"`
		Context    string  `json:"context,omitempty"`
	}
	rows := make([]row, 0, len(results))
	for _, r := range results {
		rows = append(rows, row{
			Docid:      r.Docid,
			Collection: r.Document.Collection,
			Path:       r.Document.Path,
			Title:      r.Document.Title,
			Score:      r.Score,
			Snippet:    r.Snippet,
			Context:    r.Context,
		})
	}
	return jsonEncode(w, rows)
}

func writeSearchTable(w io.Writer, results []search.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}

	styled := ui.IsTTY(w)
	for _, r := range results {
		if styled {
			fmt.Fprintf(w, "%s  %.3f  %s/%s  %s\n", r.Docid, r.Score, r.Document.Collection, r.Document.Path, r.Document.Title)
		} else {
			fmt.Fprintf(w, "%s\t%.3f\t%s/%s\t%s\n", r.Docid, r.Score, r.Document.Collection, r.Document.Path, r.Document.Title)
		}
		if r.Snippet != "" {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(r.Snippet, "\n", " "))
		}
	}
	return nil
}
