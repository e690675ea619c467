package github

type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

type Repo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	HTMLURL         string `json:"html_url"`
	StargazersCount int64  `json:"stargazers_count"`
	ForksCount      int64  `json:"forks_count"`
	Language        string `json:"language"`
	UpdatedAt       string `json:"updated_at"`
	Owner           User   `json:"owner"`
}

type Asset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	DownloadCount      int64  `json:"download_count"`
	CreatedAt          string `json:"created_at"`
	BrowserDownloadURL string `json:"browser_download_url"`
	ContentType        string `json:"content_type"`
}

type Release struct {
	ID          int64    `json:"id"`
	TagName     string   `json:"tag_name"`
	Name        string   `json:"name"`
	Body        string   `json:"body"`
	CreatedAt   string   `json:"created_at"`
	PublishedAt string   `json:"published_at"`
	Prerelease  bool     `json:"prerelease"`
	Draft       bool     `json:"draft"`
	Assets      []*Asset `json:"assets"`
	Author      User     `json:"author"`
	HTMLURL     string   `json:"html_url"`
}

// DisplayName falls back to the tag when the release has no title.
func (r *Release) DisplayName() string {
	if len(r.Name) > 0 {
		return r.Name
	}
	return r.TagName
}
