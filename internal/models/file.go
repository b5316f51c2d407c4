package models

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// CurrentSchemaVersion is the persisted FileRecord schema version. Version 1
// was the historical shape with a nested "file" object; it is still accepted
// on read and migrated (see DecodeFileRecord).
const CurrentSchemaVersion = 2

// FileRecord represents one uploaded file and its remote handle, stored locally
type FileRecord struct {
	SchemaVersion int    `json:"schema_version"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	MimeType      string `json:"mime_type"`
	LocalURI      string `json:"local_uri"`
	RemoteURL     string `json:"remote_url"`
	Token         string `json:"token"`
	Expires       string `json:"expires"` // epoch millis, as returned by the host
}

// PickedFile represents a file handle returned by the document picker
type PickedFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	URI      string `json:"uri"` // local on-device copy
}

// DeriveFileID derives the registry key for a display name. Records are keyed
// by name, not content, so uploading a different file under the same name
// overwrites its entry.
func DeriveFileID(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Owned reports whether this client holds a deletion token for the record.
// Records without a token describe content that already existed remotely and
// cannot be deleted by this client.
func (f *FileRecord) Owned() bool {
	return f.Token != ""
}

// ExpiresTime parses the host-supplied expiry (epoch millis string)
func (f *FileRecord) ExpiresTime() (time.Time, error) {
	if f.Expires == "" {
		return time.Time{}, fmt.Errorf("record has no expiry")
	}
	millis, err := strconv.ParseInt(f.Expires, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiry %q: %w", f.Expires, err)
	}
	return time.UnixMilli(millis), nil
}

// ToJSON serializes the record to its persisted string form
func (f *FileRecord) ToJSON() (string, error) {
	f.SchemaVersion = CurrentSchemaVersion
	data, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("failed to serialize file record: %w", err)
	}
	return string(data), nil
}

// legacyFileRecord is the version-1 persisted shape: picker fields nested
// under a "file" object, remote URL under "url"
type legacyFileRecord struct {
	ID   string `json:"id"`
	File struct {
		Name     string `json:"name"`
		Size     int64  `json:"size"`
		MimeType string `json:"mimeType"`
		URI      string `json:"uri"`
	} `json:"file"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// DecodeFileRecord parses a persisted record, migrating the legacy version-1
// shape when encountered. The returned record is always at the current schema
// version.
func DecodeFileRecord(data string) (*FileRecord, error) {
	var probe struct {
		SchemaVersion int             `json:"schema_version"`
		File          json.RawMessage `json:"file"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return nil, fmt.Errorf("unparseable file record: %w", err)
	}

	// No version field plus a nested "file" object means the legacy shape
	if probe.SchemaVersion == 0 && len(probe.File) > 0 {
		var legacy legacyFileRecord
		if err := json.Unmarshal([]byte(data), &legacy); err != nil {
			return nil, fmt.Errorf("unparseable legacy file record: %w", err)
		}
		return migrateLegacyRecord(&legacy)
	}

	var record FileRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("unparseable file record: %w", err)
	}
	if record.ID == "" {
		return nil, fmt.Errorf("file record has no id")
	}
	record.SchemaVersion = CurrentSchemaVersion
	return &record, nil
}

// migrateLegacyRecord flattens the version-1 shape into the current one
func migrateLegacyRecord(legacy *legacyFileRecord) (*FileRecord, error) {
	if legacy.ID == "" {
		return nil, fmt.Errorf("legacy file record has no id")
	}
	return &FileRecord{
		SchemaVersion: CurrentSchemaVersion,
		ID:            legacy.ID,
		Name:          legacy.File.Name,
		Size:          legacy.File.Size,
		MimeType:      legacy.File.MimeType,
		LocalURI:      legacy.File.URI,
		RemoteURL:     legacy.URL,
		Token:         legacy.Token,
		Expires:       legacy.Expires,
	}, nil
}

// FormatSize renders a byte count for display (decimal units, one fractional
// digit)
func FormatSize(bytes int64) string {
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "kMGTPE"[exp])
}

// FormatExpiry renders an expiry timestamp for display
func FormatExpiry(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04:05")
}
