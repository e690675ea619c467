package github

import (
	"context"
	"fmt"
	"net/http"
)

const (
	msgRateLimited  = "API rate limit exceeded, try later or configure a GitHub token"
	msgRepoNotFound = "repository not found or no access"
	msgUserNotFound = "user not found"
)

type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

type notFoundKind int

const (
	notFoundRepo notFoundKind = iota
	notFoundUser
)

func newAPIError(code int, kind notFoundKind) *APIError {
	msg := http.StatusText(code)
	switch code {
	case http.StatusForbidden:
		msg = msgRateLimited
	case http.StatusNotFound:
		msg = msgRepoNotFound
		if kind == notFoundUser {
			msg = msgUserNotFound
		}
	}
	return &APIError{Code: code, Message: msg}
}

type IClient interface {
	GetRepo(ctx context.Context, owner, repo string) (*Repo, error)
	GetUser(ctx context.Context, name string) (*User, error)
	// GetUserRepos lists repos sorted by update time, perPage<=0 uses the client default.
	GetUserRepos(ctx context.Context, name string, perPage int) ([]*Repo, error)
	GetReleases(ctx context.Context, owner, repo string, perPage int) ([]*Release, error)
	// DownloadAsset saves link into dst and returns the written size.
	DownloadAsset(ctx context.Context, link string, dst string) (int64, error)
}
