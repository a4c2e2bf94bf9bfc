// Command token mints a bearer token for the performance API, signed with
// JWT_SECRET. Operators use it to call the API for a tenant before an
// identity provider is wired in.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"hrperf/internal/domain/auth"
	"hrperf/internal/platform/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, config.Load().JWTSecret); err != nil {
		slog.Error("mint token failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, secret string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id")
	userID := fs.String("user", "", "user id")
	role := fs.String("role", auth.RoleAdmin, "role: admin, hr_manager, manager or employee")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case secret == "":
		return errors.New("JWT_SECRET is required")
	case *tenantID == "":
		return errors.New("-tenant is required")
	case *ttl <= 0:
		return errors.New("-ttl must be positive")
	}
	if _, ok := auth.RolePermissions[*role]; !ok {
		return fmt.Errorf("unknown role %q", *role)
	}

	token, err := auth.GenerateToken(secret, auth.Claims{
		UserID:   *userID,
		TenantID: *tenantID,
		Role:     *role,
	}, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
