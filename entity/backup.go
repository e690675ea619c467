package entity

type BackupData struct {
	Version   string    `json:"version"`
	Timestamp int64     `json:"timestamp"` //unix milli
	Settings  *Settings `json:"settings"`
	Presets   []*Preset `json:"presets"`
}

type BackupMetadata struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Timestamp     int64  `json:"timestamp"`
	Version       string `json:"version"`
	SettingsCount int    `json:"settingsCount"`
	PresetsCount  int    `json:"presetsCount"`
	Checksum      string `json:"checksum,omitempty"`
}

type BackupRecord struct {
	ID       string          `json:"-"`
	Data     *BackupData     `json:"data"`
	Metadata *BackupMetadata `json:"metadata"`
}
