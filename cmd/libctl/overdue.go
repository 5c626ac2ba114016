// AngelaMos | 2026
// overdue.go

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/library-backend/internal/catalog"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/lending"
)

func (a *app) overdueCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Write the overdue books report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, _, err := a.database(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := lending.NewService(
				lending.NewRepository(db.DB),
				catalog.NewService(db.DB, a.logger),
				core.SystemClock{},
				a.logger,
				nil,
			)

			entries, err := svc.Overdue(ctx, systemActor)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create report: %w", err)
				}
				defer f.Close()
				w = f
			}

			return lending.WriteOverdueReport(w, entries)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "",
		"write to file instead of stdout (e.g. "+lending.ReportFilename+")")

	return cmd
}
