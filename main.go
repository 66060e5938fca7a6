package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth"
	authrepo "github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth/repo"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

// Maintenance tool: schema migrations, out-of-band account creation and token cleanup.
func main() {
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(sugar).ExecuteContext(ctx); err != nil {
		sugar.Errorw("command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd(sugar *zap.SugaredLogger) *cobra.Command {
	root := &cobra.Command{
		Use:           "refinerctl",
		Short:         "Maintenance commands for service-refiner-go",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(sugar), newUserCmd(sugar), newTokensCmd(sugar))
	return root
}

func openDB() (*sql.DB, error) {
	return database.Connect(database.ConfigFromEnv())
}

func newMigrateCmd(sugar *zap.SugaredLogger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			sugar.Info("migrations applied")
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return database.MigrationStatus(cmd.Context(), db)
		},
	})
	return cmd
}

func newUserCmd(sugar *zap.SugaredLogger) *cobra.Command {
	var email, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			svc := user.NewUserService(database.Wrap(db), nil, nil)
			u, err := svc.CreateUser(cmd.Context(), email, password, entity.Role(role))
			if err != nil {
				return err
			}
			sugar.Infow("user created", "id", u.ID, "email", u.Email, "role", u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "account email (login username)")
	create.Flags().StringVar(&password, "password", "", "account password")
	create.Flags().StringVar(&role, "role", string(entity.RoleUser), "USER or ADMIN")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd := &cobra.Command{Use: "user", Short: "Account commands"}
	cmd.AddCommand(create)
	return cmd
}

func newTokensCmd(sugar *zap.SugaredLogger) *cobra.Command {
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired access tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := auth.ConfigFromEnv()
			var store auth.TokenStore
			if cfg.Store == auth.StoreRedis {
				rdb, err := authrepo.NewRedisClient(cmd.Context(), cfg.Redis)
				if err != nil {
					return err
				}
				defer rdb.Close()
				store = authrepo.NewRedisTokenRepo(rdb)
			} else {
				db, err := openDB()
				if err != nil {
					return err
				}
				defer db.Close()
				store = authrepo.NewTokenRepo(database.Wrap(db))
			}
			n, err := store.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			sugar.Infow("expired tokens purged", "count", n, "store", cfg.Store)
			return nil
		},
	}
	cmd := &cobra.Command{Use: "tokens", Short: "Access token commands"}
	cmd.AddCommand(purge)
	return cmd
}
