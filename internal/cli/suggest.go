// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/suggest"
)

func newSuggestCmd(st *state) *cobra.Command {
	var (
		count    int
		seed     uint64
		followUp bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Print a sample of starter suggestions",
		Long: `Sample suggestions the way the widget does: an initial batch of distinct
candidates, or with --follow-up a single follow-up suggestion.

Use --seed for a repeatable sample.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := st.store()
			if err != nil {
				return err
			}
			candidates := store.Content().Suggestions

			src := suggest.NewSource()
			if cmd.Flags().Changed("seed") {
				src = suggest.NewSeeded(seed)
			}
			if !cmd.Flags().Changed("count") {
				count = st.cfg.Widget.SuggestionCount
			}

			var picked []model.Suggestion
			if followUp {
				if s, ok := suggest.PickFollowUp(src, candidates); ok {
					picked = append(picked, s)
				}
			} else {
				picked = suggest.PickInitialBatch(src, candidates, count)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(picked)
			}
			if len(picked) == 0 {
				fmt.Fprintln(out, DimStyle.Render("No suggestions in this locale."))
				return nil
			}
			for _, s := range picked {
				fmt.Fprintf(out, "%s %s\n", RenderLabel(s.Label()), ValueStyle.Render(s.Full))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", suggest.DefaultBatchSize, "initial batch size")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for a repeatable sample")
	cmd.Flags().BoolVar(&followUp, "follow-up", false, "pick one follow-up suggestion")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
