package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/medrec/pkg/medrec"
	"github.com/cognicore/medrec/pkg/medrec/store"
)

func newPredictCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict [text...]",
		Short: "Recommend a disease for the given symptoms, or start an interactive session",
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

			out := cmd.OutOrStdout()
			answer := func(text string) error {
				rec := med.Recommend(text)
				a.record(ctx, st, rec)
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(rec)
				}
				printRecommendation(out, rec)
				return nil
			}

			if len(args) > 0 {
				return answer(strings.Join(args, " "))
			}

			fmt.Fprintln(out, "Describe your symptoms (Ctrl+D to exit):")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					break
				}
				if err := answer(text); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the recommendation as JSON")
	return cmd
}

func (a *app) record(ctx context.Context, st store.Store, rec medrec.Recommendation) {
	if st == nil {
		return
	}
	if err := st.AppendHistory(ctx, rec.History()); err != nil {
		a.logger.Warn("record history", zap.String("id", rec.ID), zap.Error(err))
	}
}

func printRecommendation(w io.Writer, rec medrec.Recommendation) {
	if len(rec.Symptoms) == 0 {
		fmt.Fprintln(w, "No known symptoms recognized.")
		return
	}
	fmt.Fprintf(w, "Symptoms:    %s\n", strings.Join(rec.Symptoms, ", "))
	if !rec.Found {
		fmt.Fprintln(w, "No matching disease found.")
		return
	}

	fmt.Fprintf(w, "Disease:     %s (%s", rec.Disease, rec.Tier)
	if rec.Score > 0 {
		fmt.Fprintf(w, ", score %.2f", rec.Score)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "Specialist:  %s\n", rec.Specialist)

	if rec.Advice == nil {
		return
	}
	fmt.Fprintf(w, "Description: %s\n", rec.Advice.Description)
	printList(w, "Precautions", rec.Advice.Precautions)
	printList(w, "Medications", rec.Advice.Medications)
	printList(w, "Diets", rec.Advice.Diets)
	printList(w, "Workouts", rec.Advice.Workouts)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", label)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
