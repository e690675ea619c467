package entity

const (
	ThemeBlue = "blue"
	ThemePink = "pink"
)

type Settings struct {
	MirrorURL   string `json:"mirrorUrl"`
	Theme       string `json:"theme,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Theme: ThemeBlue,
	}
}

func IsValidTheme(theme string) bool {
	return theme == ThemeBlue || theme == ThemePink
}

type Preset struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}
