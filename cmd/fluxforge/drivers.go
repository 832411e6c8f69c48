package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fluxforge/fluxforge/dialect"
	"github.com/fluxforge/fluxforge/dialect/mysql"
	"github.com/fluxforge/fluxforge/dialect/postgres"
	"github.com/fluxforge/fluxforge/schema"
)

// openDriver dispatches a connection URL to the matching dialect.Driver by
// scheme (spec §6: "mysql://..." / "postgres://..."; unknown schemes are a
// usage error, exit code 1).
func openDriver(ctx context.Context, url string) (dialect.Driver, error) {
	url, err := fillPasswordPrompt(url)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(url, "mysql://"):
		return mysql.Open(ctx, dialect.Config{URL: url})
	case strings.HasPrefix(url, "postgres://"):
		return postgres.Open(ctx, dialect.Config{URL: url})
	default:
		return nil, &usageError{msg: "unrecognized connection URL scheme (expected mysql:// or postgres://): " + url}
	}
}

// fillPasswordPrompt prompts for a password on an interactive terminal when
// the connection URL's userinfo names a user but carries no password
// ("mysql://user@host/db"), the way the teacher's mysqldef CLI's
// --password-prompt flag reads a hidden password with golang.org/x/term
// instead of ever taking it as a plain argument.
func fillPasswordPrompt(url string) (string, error) {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url, nil
	}
	userinfo, hostpath, ok := strings.Cut(rest, "@")
	if !ok {
		return url, nil
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if hasPassword || !term.IsTerminal(int(os.Stdin.Fd())) {
		return url, nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return scheme + "://" + user + ":" + string(pass) + "@" + hostpath, nil
}

func dialectOf(url string) schema.Dialect {
	switch {
	case strings.HasPrefix(url, "mysql://"):
		return schema.DialectMySQL
	case strings.HasPrefix(url, "postgres://"):
		return schema.DialectPostgres
	default:
		return schema.DialectUnknown
	}
}

// usageError marks a CLI-level error (spec §6 exit code 1), distinct from
// the fferr.Kind sentinels that map to the other exit codes.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }
