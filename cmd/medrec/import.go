package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/medrec/pkg/medrec/dataset"
	"github.com/cognicore/medrec/pkg/medrec/vocab"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [dir]",
		Short: "Import a CSV dataset directory into the SQLite database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Dataset.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if a.cfg.Dataset.DB == "" {
				return fmt.Errorf("import needs a database: set --db or dataset.db")
			}

			ctx := cmd.Context()
			b, err := dataset.LoadDir(dir)
			if err != nil {
				return err
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.ReplaceDataset(ctx, b); err != nil {
				return fmt.Errorf("import %s: %w", dir, err)
			}

			idx := vocab.Build(b.Records)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d symptoms, %d diseases, %d with advice) into %s\n",
				len(b.Records), idx.Len(), idx.DiseaseCount(), len(b.Care()), a.cfg.Dataset.DB)
			return nil
		},
	}
}
