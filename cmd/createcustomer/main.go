// Command createcustomer registers a customer directly in the database and
// prints the new access token.
//
// Usage:
//
//	createcustomer [--db path] <email>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	sqliteadapter "github.com/ericfisherdev/examdesk/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/examdesk/internal/application"
	"github.com/ericfisherdev/examdesk/internal/config"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbPath := cfg.DBPath
	flagSet := pflag.NewFlagSet("createcustomer", pflag.ContinueOnError)
	flagSet.StringVar(&dbPath, "db", cfg.DBPath, "SQLite database file (default: $EXAMDESK_DB_PATH)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) != 1 {
		return errors.New("usage: createcustomer [--db path] <email>")
	}

	db, err := sqliteadapter.NewDB(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	credentials := application.NewCredentialService(sqliteadapter.NewCredentialRepo(db), nil, logger)

	cred, err := credentials.Create(ctx, rest[0])
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	fmt.Fprintln(out, "CUSTOMER CREATED")
	fmt.Fprintf(out, "Email:       %s\n", cred.Email)
	fmt.Fprintf(out, "Customer ID: %s\n", cred.ID)
	fmt.Fprintln(out)
	fmt.Fprintln(out, cred.Token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Share this token with the student. They use it to log in.")
	return nil
}
