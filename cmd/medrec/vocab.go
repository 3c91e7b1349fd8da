package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/medrec/pkg/medrec/internalerr"
	"github.com/cognicore/medrec/pkg/medrec/match"
)

func newVocabCmd(a *app) *cobra.Command {
	var (
		symptom  string
		disease  string
		diseases bool
		suggest  string
	)

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect the symptom vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if st != nil {
				defer st.Close()
			}
			med, err := a.build(ctx, st, nil)
			if err != nil {
				return err
			}
			idx := med.Index()
			out := cmd.OutOrStdout()

			switch {
			case symptom != "":
				list := idx.DiseasesFor(symptom)
				if len(list) == 0 {
					return fmt.Errorf("symptom %q: %w", symptom, internalerr.ErrNotFound)
				}
				fmt.Fprintln(out, strings.Join(list, "\n"))
			case disease != "":
				list := idx.SymptomsFor(disease)
				if len(list) == 0 {
					return fmt.Errorf("disease %q: %w", disease, internalerr.ErrNotFound)
				}
				fmt.Fprintln(out, strings.Join(list, "\n"))
			case suggest != "":
				for _, c := range match.Suggest(idx, suggest, 0, 5) {
					fmt.Fprintf(out, "%-30s %.2f\n", c.Symptom, c.Score)
				}
			case diseases:
				fmt.Fprintln(out, strings.Join(idx.Diseases(), "\n"))
			default:
				fmt.Fprintln(out, strings.Join(idx.Symptoms(), "\n"))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&symptom, "symptom", "", "list diseases that exhibit this symptom")
	f.StringVar(&disease, "disease", "", "list symptoms of this disease")
	f.BoolVar(&diseases, "diseases", false, "list all diseases")
	f.StringVar(&suggest, "suggest", "", "show the closest known symptoms for a word")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently served recommendations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("history needs a database: set --db or dataset.db")
			}
			defer st.Close()

			entries, err := st.History(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				disease := e.Disease
				if disease == "" {
					disease = "-"
				}
				fmt.Fprintf(out, "%s  %-16s %-28s %q\n", e.ID, e.Tier, disease, e.Input)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
