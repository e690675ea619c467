package davclient

import (
	"strings"
	"time"
)

const (
	backupFilePrefix = "backup-"
	backupFileSuffix = ".json"
	backupTimeLayout = "2006-01-02T15:04:05.000Z"
	// names written before milliseconds were kept
	legacyTimeLayout = "2006-01-02T15-04-05"
)

var timeStripper = strings.NewReplacer(":", "-", ".", "-")

// BackupFileName builds the remote name for a backup taken at t, an iso8601 timestamp
// with ':' and '.' replaced, e.g. backup-2024-01-01T00-00-00-000Z.json.
func BackupFileName(t time.Time) string {
	return backupFilePrefix + timeStripper.Replace(t.UTC().Format(backupTimeLayout)) + backupFileSuffix
}

func IsBackupFileName(name string) bool {
	return len(name) >= len(backupFilePrefix)+len(backupFileSuffix) &&
		strings.HasPrefix(name, backupFilePrefix) && strings.HasSuffix(name, backupFileSuffix)
}

// BackupFileTime recovers the timestamp encoded by BackupFileName.
func BackupFileTime(name string) (time.Time, bool) {
	if !IsBackupFileName(name) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, backupFilePrefix), backupFileSuffix)
	if len(raw) == len(backupTimeLayout) {
		// 2006-01-02T15-04-05-000Z back to 2006-01-02T15:04:05.000Z
		b := []byte(raw)
		b[13], b[16], b[19] = ':', ':', '.'
		if t, err := time.Parse(backupTimeLayout, string(b)); err == nil {
			return t, true
		}
	}
	t, err := time.Parse(legacyTimeLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
