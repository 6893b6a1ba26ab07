package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deusflow/ainews/internal/keywords"
)

type classification struct {
	Title     string `json:"title"`
	Related   bool   `json:"related"`
	Relevance int    `json:"relevance"`
}

func newClassifyCommand() *cobra.Command {
	var (
		asJSON      bool
		lexiconPath string
	)

	cmd := &cobra.Command{
		Use:   "classify [title...]",
		Short: "Score titles and extract trending topics (reads stdin when no titles are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			lexicon := keywords.Default()
			if lexiconPath != "" {
				l, err := keywords.LoadLexicon(lexiconPath)
				if err != nil {
					return err
				}
				lexicon = l
			}

			titles := args
			if len(titles) == 0 {
				var err error
				if titles, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			results := make([]classification, len(titles))
			for i, t := range titles {
				results[i] = classification{
					Title:     t,
					Related:   lexicon.IsDomainRelated(t),
					Relevance: lexicon.ScoreRelevance(t),
				}
			}
			trending := lexicon.ExtractTrendingTopics(titles)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"results": results, "trending": trending})
			}
			printClassification(out, results, trending)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().StringVar(&lexiconPath, "lexicon", "", "lexicon YAML file (default: built-in)")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	return lines, nil
}

func printClassification(w io.Writer, results []classification, trending []keywords.TrendingTopic) {
	for _, r := range results {
		mark := "-"
		if r.Related {
			mark = "+"
		}
		fmt.Fprintf(w, "%s %3d  %s\n", mark, r.Relevance, r.Title)
	}

	if len(trending) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTrending:")
	for _, t := range trending {
		hp := ""
		if t.IsHighPriority {
			hp = " *"
		}
		fmt.Fprintf(w, "  %-20s %3d  %.2f%s\n", t.Term, t.Count, t.Weight, hp)
	}
}
