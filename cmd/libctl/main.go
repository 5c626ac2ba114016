// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carterperez-dev/templates/library-backend/internal/config"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

// systemActor runs librarian-scoped operations on behalf of the operator.
var systemActor = core.Actor{
	UserID: "libctl",
	Roles:  []string{core.RoleLibrarian},
}

type app struct {
	configPath string
	logger     *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}

	root := &cobra.Command{
		Use:           "libctl",
		Short:         "Operate the library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(
		&a.configPath, "config", "config.yaml", "path to config file",
	)

	root.AddCommand(
		a.migrateCmd(),
		a.keygenCmd(),
		a.seedCmd(),
		a.overdueCmd(),
		a.purgeSessionsCmd(),
	)

	return root
}

func (a *app) config() (*config.Config, error) {
	path := a.configPath
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	return config.Load(path)
}

func (a *app) database(ctx context.Context) (*core.Database, *config.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
