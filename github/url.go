package github

import (
	"fmt"
	"net/url"
	"strings"
)

const githubHost = "github.com"

// ParseRepoURL accepts owner/repo, owner/repo.git and https://github.com/owner/repo(.git).
func ParseRepoURL(input string) (string, string, bool) {
	s := strings.TrimSpace(input)
	if strings.Contains(s, "/") && !strings.HasPrefix(s, "http") {
		parts := strings.Split(s, "/")
		return checkOwnerRepo(parts[0], parts[1])
	}
	u, err := url.Parse(s)
	if err != nil || !strings.EqualFold(u.Hostname(), githubHost) {
		return "", "", false
	}
	parts := make([]string, 0, 2)
	for _, p := range strings.Split(u.Path, "/") {
		if len(p) > 0 {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", false
	}
	return checkOwnerRepo(parts[0], parts[1])
}

func checkOwnerRepo(owner, repo string) (string, string, bool) {
	repo = strings.TrimSuffix(repo, ".git")
	if len(owner) == 0 || len(repo) == 0 {
		return "", "", false
	}
	return owner, repo, true
}

// OwnerRepoFromQuery reads the owner and repo query parameters, both must be present.
func OwnerRepoFromQuery(q url.Values) (string, string, bool) {
	owner, repo := q.Get("owner"), q.Get("repo")
	if len(owner) == 0 || len(repo) == 0 {
		return "", "", false
	}
	return owner, repo, true
}

func BuildOwnerRepoURL(owner, repo string) string {
	q := url.Values{}
	q.Set("owner", owner)
	q.Set("repo", repo)
	return "/?" + q.Encode()
}

func RepoHTMLURL(owner, repo string) string {
	return fmt.Sprintf("https://%s/%s/%s", githubHost, owner, repo)
}
