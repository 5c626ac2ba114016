// AngelaMos | 2026
// sessions.go

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/library-backend/internal/auth"
)

func (a *app) purgeSessionsCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge-sessions",
		Short: "Delete refresh sessions that expired before now minus --older-than",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, _, err := a.database(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := auth.NewService(auth.NewRepository(db.DB), nil, nil, nil, nil, a.logger)

			n, err := svc.PurgeSessions(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d sessions\n", n)
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour,
		"grace period after expiry before a session is deleted")

	return cmd
}
