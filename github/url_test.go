package github

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in    string
		owner string
		repo  string
		ok    bool
	}{
		{"facebook/react", "facebook", "react", true},
		{" facebook/react.git ", "facebook", "react", true},
		{"https://github.com/facebook/react", "facebook", "react", true},
		{"https://github.com/facebook/react.git", "facebook", "react", true},
		{"https://github.com/facebook/react/releases/tag/v1", "facebook", "react", true},
		{"https://github.com/facebook", "", "", false},
		{"https://gitlab.com/facebook/react", "", "", false},
		{"facebook", "", "", false},
		{"/react", "", "", false},
		{"", "", "", false},
	}
	for _, tst := range tests {
		owner, repo, ok := ParseRepoURL(tst.in)
		assert.Equal(t, tst.ok, ok, tst.in)
		assert.Equal(t, tst.owner, owner, tst.in)
		assert.Equal(t, tst.repo, repo, tst.in)
	}
}

func TestOwnerRepoQuery(t *testing.T) {
	link := BuildOwnerRepoURL("a b", "r&x")
	assert.Equal(t, "/?owner=a+b&repo=r%26x", link)
	u, err := url.Parse(link)
	assert.NoError(t, err)
	owner, repo, ok := OwnerRepoFromQuery(u.Query())
	assert.True(t, ok)
	assert.Equal(t, "a b", owner)
	assert.Equal(t, "r&x", repo)

	_, _, ok = OwnerRepoFromQuery(url.Values{"owner": []string{"a"}})
	assert.False(t, ok)
}
