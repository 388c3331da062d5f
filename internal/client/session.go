package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/TWRT/pm-dashboard/internal/models"
)

// Session is the provider's view of the current sign-in.
type Session struct {
	AccessToken string
	UserSub     string
}

// SessionProvider is the external identity/session collaborator. It is asked
// again before every gateway call, so implementations must not assume caching.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (models.Identity, error)
	FetchSession(ctx context.Context) (Session, error)
}

var ErrNoSession = errors.New("no session found")

// StaticSession serves a fixed token and subject, typically from configuration.
type StaticSession struct {
	Token    string
	Subject  string
	Username string
}

func (s StaticSession) CurrentUser(ctx context.Context) (models.Identity, error) {
	if s.Subject == "" {
		return models.Identity{}, ErrNoSession
	}
	return models.Identity{Username: s.Username, UserId: s.Subject}, nil
}

func (s StaticSession) FetchSession(ctx context.Context) (Session, error) {
	if s.Token == "" && s.Subject == "" {
		return Session{}, ErrNoSession
	}
	return Session{AccessToken: s.Token, UserSub: s.Subject}, nil
}

// FileSession re-reads the access token from disk on every call so a token
// refreshed by another process is picked up without restarting.
type FileSession struct {
	Path     string
	Subject  string
	Username string
}

func (s FileSession) CurrentUser(ctx context.Context) (models.Identity, error) {
	if s.Subject == "" {
		return models.Identity{}, ErrNoSession
	}
	return models.Identity{Username: s.Username, UserId: s.Subject}, nil
}

func (s FileSession) FetchSession(ctx context.Context) (Session, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{UserSub: s.Subject}, nil
		}
		return Session{}, fmt.Errorf("read token file: %w", err)
	}
	return Session{
		AccessToken: strings.TrimSpace(string(data)),
		UserSub:     s.Subject,
	}, nil
}
