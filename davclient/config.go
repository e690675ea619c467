package davclient

import "net/http"

type config struct {
	BaseURL    string
	Username   string
	Password   string
	RemotePath string
	UserAgent  string
	Client     *http.Client
}

type Option func(*config)

func WithBaseURL(u string) Option {
	return func(c *config) {
		c.BaseURL = u
	}
}

func WithAuth(user string, pwd string) Option {
	return func(c *config) {
		c.Username = user
		c.Password = pwd
	}
}

func WithRemotePath(p string) Option {
	return func(c *config) {
		c.RemotePath = p
	}
}

func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.UserAgent = ua
	}
}

func WithHTTPClient(cli *http.Client) Option {
	return func(c *config) {
		c.Client = cli
	}
}
