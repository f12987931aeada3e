// Command devtoken mints bearer tokens for local development. Tokens are
// signed with JWT_SIGNING_KEY, the same key the server validates with.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "finetrack/internal/jwt_token"
	"finetrack/internal/platform/config"
	id "finetrack/pkg/domain"
	"finetrack/pkg/requestcontext"
)

func main() {
	role := flag.String("role", "officer", "officer, civilian or admin")
	user := flag.String("user", "dev-user", "user id")
	officer := flag.String("officer", "", "officer id (officer role)")
	code := flag.String("nic", "", "identity code (civilian role)")
	ttl := flag.Duration("ttl", 8*time.Hour, "token lifetime")
	flag.Parse()

	subject, err := subjectFor(requestcontext.Role(*role), *user, *officer, *code)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	token, err := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience).
		GenerateAccessToken(subject, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func subjectFor(role requestcontext.Role, user, officer, code string) (jwttoken.Subject, error) {
	subject := jwttoken.Subject{UserID: user, Role: string(role)}
	switch role {
	case requestcontext.RoleOfficer:
		if officer == "" {
			return subject, fmt.Errorf("-officer is required for the officer role")
		}
		subject.OfficerID = officer
	case requestcontext.RoleCivilian:
		parsed, err := id.ParseIdentityCode(code)
		if err != nil {
			return subject, fmt.Errorf("-nic: %w", err)
		}
		subject.IdentityCode = parsed.String()
	case requestcontext.RoleAdmin:
	default:
		return subject, fmt.Errorf("unknown role %q", role)
	}
	return subject, nil
}
