// Command blogctl runs one-off maintenance tasks against the inkwell database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/pkg/config"
	"github.com/inkwell/inkwell/pkg/logging"
)

const usage = `Usage: blogctl <command> [arguments]

Commands:
  init                 create the schema and the configured bootstrap admin
  promote <username>   grant the admin flag to an existing user
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()
	logger := logging.WithComponent("blogctl")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		logger.Error("Command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	passwords := auth.NewPasswords(cfg.Session.PasswordCost)
	if err := db.Initialize(ctx, database, cfg.Bootstrap, passwords.Hash); err != nil {
		return err
	}

	switch args[0] {
	case "init":
		fmt.Println("Database initialized")
		return nil
	case "promote":
		if len(args) != 2 {
			return fmt.Errorf("promote takes exactly one username")
		}
		service := blog.NewService(db.NewRepository(database.DB), passwords, blog.Options{})
		user, err := service.PromoteByName(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("User %s (id %d) is now an admin\n", user.Username, user.ID)
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}
