package github

import (
	"net/http"
	"time"

	"github.com/xxxsen/ghrelease/cacheapi"
)

type config struct {
	APIBase   string
	Token     string
	UserAgent string
	PerPage   int
	Client    *http.Client
	Cache     cacheapi.ICache[string, []byte]

	RetryInterval time.Duration
}

type Option func(c *config)

func WithAPIBase(u string) Option {
	return func(c *config) {
		c.APIBase = u
	}
}

func WithToken(t string) Option {
	return func(c *config) {
		c.Token = t
	}
}

func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.UserAgent = ua
	}
}

func WithPerPage(n int) Option {
	return func(c *config) {
		c.PerPage = n
	}
}

func WithHTTPClient(cli *http.Client) Option {
	return func(c *config) {
		c.Client = cli
	}
}

// WithCache keeps successful GET bodies keyed by url, nil disables caching.
func WithCache(cc cacheapi.ICache[string, []byte]) Option {
	return func(c *config) {
		c.Cache = cc
	}
}

// WithRetryInterval sets the wait between transport retries, http error statuses are never retried.
func WithRetryInterval(interval time.Duration) Option {
	return func(c *config) {
		c.RetryInterval = interval
	}
}
