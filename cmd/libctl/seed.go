// AngelaMos | 2026
// seed.go

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/library-backend/internal/catalog"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/user"
)

func (a *app) seedCmd() *cobra.Command {
	var (
		books    int
		seed     uint64
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a staff account and a fake catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if len(password) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}

			db, _, err := a.database(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := core.HashPassword(password)
			if err != nil {
				return err
			}

			staff := &user.User{
				ID:           uuid.New().String(),
				Email:        strings.ToLower(email),
				PasswordHash: hash,
				FirstName:    "Library",
				LastName:     "Staff",
				Enabled:      true,
				Roles:        user.RoleSet{core.RoleAdmin, core.RoleLibrarian},
			}
			if err := user.NewRepository(db.DB).Create(ctx, staff); err != nil {
				return fmt.Errorf("create staff account: %w", err)
			}
			a.logger.Info("staff account created", "user_id", staff.ID, "email", staff.Email)

			svc := catalog.NewService(db.DB, a.logger)
			actor := core.Actor{UserID: staff.ID, Roles: []string(staff.Roles)}
			faker := gofakeit.New(seed)

			for range books {
				if _, err := svc.Create(ctx, actor, fakeBook(faker)); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"seeded %d books owned by %s\n", books, staff.Email)
			return err
		},
	}

	cmd.Flags().IntVar(&books, "books", 50, "number of books to create")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "faker seed, 0 for random")
	cmd.Flags().StringVar(&email, "email", "librarian@library.local", "staff account email")
	cmd.Flags().StringVar(&password, "password", "", "staff account password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func fakeBook(f *gofakeit.Faker) catalog.CreateBookRequest {
	published := f.DateRange(
		time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Now().UTC(),
	)

	return catalog.CreateBookRequest{
		Title:           f.BookTitle(),
		AuthorName:      f.BookAuthor(),
		ISBN:            f.Numerify("978##########"),
		Synopsis:        f.Sentence(24),
		Genre:           f.BookGenre(),
		PublicationDate: &published,
		Shareable:       f.Bool(),
	}
}
