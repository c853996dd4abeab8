// Command gentoken prints a signed admin bearer token.
//
// Usage:
//
//	gentoken [--days N] [--client-id admin] [--role admin]
//
// With --days 0 (the default) the token never expires. The signing secret is
// read from EXAMDESK_SESSION_SECRET.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/ericfisherdev/examdesk/internal/application"
	"github.com/ericfisherdev/examdesk/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, now func() time.Time) error {
	var days int
	var clientID, role string

	flagSet := pflag.NewFlagSet("gentoken", pflag.ContinueOnError)
	flagSet.IntVar(&days, "days", 0, "days until the token expires (0 = never)")
	flagSet.StringVar(&clientID, "client-id", "admin", "clientId claim")
	flagSet.StringVar(&role, "role", "admin", "role claim")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	// A bare positional count is accepted as the number of days.
	if rest := flagSet.Args(); len(rest) > 0 {
		if len(rest) > 1 || flagSet.Changed("days") {
			return fmt.Errorf("unexpected argument: %s", rest[len(rest)-1])
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid day count %q", rest[0])
		}
		days = n
	}
	if days < 0 {
		return fmt.Errorf("--days must not be negative, got %d", days)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	codec, err := application.NewTokenCodec([]byte(cfg.SessionSecret), now)
	if err != nil {
		return err
	}

	var opts []application.IssueOption
	ttl := time.Duration(days) * 24 * time.Hour
	if days > 0 {
		opts = append(opts, application.WithTTL(ttl))
	}

	token, err := codec.Issue(map[string]any{"clientId": clientID, "role": role}, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "ADMIN TOKEN")
	if days > 0 {
		fmt.Fprintf(out, "Expires: %s (%d days)\n", now().UTC().Add(ttl).Format(time.RFC3339), days)
	} else {
		fmt.Fprintln(out, "Expires: never")
	}
	if cfg.UsesDefaultSecret() {
		fmt.Fprintln(out, "Warning: signed with the development secret; set EXAMDESK_SESSION_SECRET")
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Send it as: Authorization: Bearer <token>")
	return nil
}
