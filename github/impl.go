package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/retry"
	"github.com/xxxsen/ghrelease/cacheapi"
	"github.com/xxxsen/ghrelease/utils"
	"go.uber.org/zap"
)

const (
	DefaultAPIBase   = "https://api.github.com"
	defaultUserAgent = "ghrel-github-client/1.0"
	defaultPerPage   = 30
	acceptHeader     = "application/vnd.github.v3+json"
	maxRetryTimes    = 3
)

var (
	defaultHttpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			IdleConnTimeout:     20 * time.Second,
			MaxIdleConns:        5,
			MaxIdleConnsPerHost: 2,
		},
	}
	defaultDownloadClient = &http.Client{
		Transport: defaultHttpClient.Transport,
	}
)

type defaultClient struct {
	c *config
}

func New(opts ...Option) (IClient, error) {
	c := &config{
		APIBase:       DefaultAPIBase,
		UserAgent:     defaultUserAgent,
		PerPage:       defaultPerPage,
		Client:        defaultHttpClient,
		RetryInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.APIBase = strings.TrimSuffix(strings.TrimSpace(c.APIBase), "/")
	if len(c.APIBase) == 0 {
		return nil, fmt.Errorf("no api base found")
	}
	if _, err := url.Parse(c.APIBase); err != nil {
		return nil, fmt.Errorf("invalid api base:%s, err:%w", c.APIBase, err)
	}
	if c.PerPage <= 0 {
		c.PerPage = defaultPerPage
	}
	return &defaultClient{c: c}, nil
}

func (d *defaultClient) buildURL(api string, query url.Values) string {
	link := d.c.APIBase + api
	if len(query) > 0 {
		link += "?" + query.Encode()
	}
	return link
}

func (d *defaultClient) perPage(n int) int {
	if n <= 0 {
		return d.c.PerPage
	}
	return n
}

// send performs a GET, transport failures are retried, any received status is returned as is.
func (d *defaultClient) send(ctx context.Context, cli *http.Client, link string, withToken bool, onResp func(rsp *http.Response) error) error {
	return retry.RetryDo(ctx, maxRetryTimes, d.c.RetryInterval, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("User-Agent", d.c.UserAgent)
		if withToken && len(d.c.Token) > 0 {
			req.Header.Set("Authorization", "token "+d.c.Token)
		}
		rsp, err := cli.Do(req)
		if err != nil {
			logutil.GetLogger(ctx).Error("call github failed, wait retry", zap.Error(err), zap.String("url", link))
			return err
		}
		defer rsp.Body.Close()
		return onResp(rsp)
	})
}

func (d *defaultClient) fetch(ctx context.Context, link string, kind notFoundKind) ([]byte, bool, error) {
	var (
		raw     []byte
		httpErr error
	)
	err := d.send(ctx, d.c.Client, link, true, func(rsp *http.Response) error {
		if rsp.StatusCode != http.StatusOK {
			httpErr = newAPIError(rsp.StatusCode, kind)
			return nil
		}
		data, err := io.ReadAll(rsp.Body)
		if err != nil {
			return err
		}
		raw = data
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("request github failed, err:%w", err)
	}
	if httpErr != nil {
		return nil, false, httpErr
	}
	return raw, true, nil
}

func (d *defaultClient) getJSON(ctx context.Context, api string, query url.Values, kind notFoundKind, out interface{}) error {
	link := d.buildURL(api, query)
	var (
		raw []byte
		err error
	)
	if d.c.Cache != nil {
		raw, _, err = cacheapi.Load(ctx, d.c.Cache, link, func(ctx context.Context, k string) ([]byte, bool, error) {
			return d.fetch(ctx, k, kind)
		})
	} else {
		raw, _, err = d.fetch(ctx, link, kind)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode github response failed, url:%s, err:%w", link, err)
	}
	return nil
}

func (d *defaultClient) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	rs := &Repo{}
	api := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := d.getJSON(ctx, api, nil, notFoundRepo, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (d *defaultClient) GetUser(ctx context.Context, name string) (*User, error) {
	rs := &User{}
	if err := d.getJSON(ctx, "/users/"+url.PathEscape(name), nil, notFoundUser, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (d *defaultClient) GetUserRepos(ctx context.Context, name string, perPage int) ([]*Repo, error) {
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", strconv.Itoa(d.perPage(perPage)))
	rs := make([]*Repo, 0)
	if err := d.getJSON(ctx, "/users/"+url.PathEscape(name)+"/repos", q, notFoundUser, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (d *defaultClient) GetReleases(ctx context.Context, owner, repo string, perPage int) ([]*Release, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(d.perPage(perPage)))
	api := fmt.Sprintf("/repos/%s/%s/releases", url.PathEscape(owner), url.PathEscape(repo))
	rs := make([]*Release, 0)
	if err := d.getJSON(ctx, api, q, notFoundRepo, &rs); err != nil {
		return nil, err
	}
	return rs, nil
}

type countReader struct {
	r io.Reader
	n int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (d *defaultClient) DownloadAsset(ctx context.Context, link string, dst string) (int64, error) {
	var (
		size    int64
		httpErr error
	)
	// the token is never sent along, link may point to a mirror
	err := d.send(ctx, defaultDownloadClient, link, false, func(rsp *http.Response) error {
		if rsp.StatusCode != http.StatusOK {
			httpErr = &APIError{Code: rsp.StatusCode, Message: http.StatusText(rsp.StatusCode)}
			return nil
		}
		cr := &countReader{r: rsp.Body}
		if err := utils.SafeSaveIOToFile(dst, cr); err != nil {
			return err
		}
		size = cr.n
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("download asset failed, url:%s, err:%w", link, err)
	}
	if httpErr != nil {
		return 0, httpErr
	}
	logutil.GetLogger(ctx).Info("asset downloaded", zap.String("url", link), zap.String("dst", dst), zap.Int64("size", size))
	return size, nil
}
