package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ApplicationSettings represents user preferences stored locally
type ApplicationSettings struct {
	// Upload defaults
	DefaultRetention int  `json:"default_retention"` // hours, 0 = host default
	DefaultSecret    bool `json:"default_secret"`    // request hard-to-guess URLs

	// Endpoint override; empty means the built-in endpoint
	EndpointOverride string `json:"endpoint_override"`

	// Application settings
	AutoRefresh bool `json:"auto_refresh"` // refresh the file list on focus

	// Internal tracking
	LastUpdated time.Time `json:"last_updated"`
}

// DefaultApplicationSettings returns the default application settings
func DefaultApplicationSettings() *ApplicationSettings {
	return &ApplicationSettings{
		DefaultRetention: 0,
		DefaultSecret:    false,
		EndpointOverride: "",
		AutoRefresh:      true,
		LastUpdated:      time.Now(),
	}
}

// Validate checks the settings for usable values
func (s *ApplicationSettings) Validate() error {
	if s.DefaultRetention < 0 {
		return fmt.Errorf("default retention cannot be negative")
	}
	return nil
}

// ToJSON serializes the settings to a JSON string
func (s *ApplicationSettings) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to serialize settings: %w", err)
	}
	return string(data), nil
}

// FromJSON deserializes settings from a JSON string
func (s *ApplicationSettings) FromJSON(data string) error {
	if err := json.Unmarshal([]byte(data), s); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	return nil
}

// ShareRecord represents one share action performed on an uploaded file
type ShareRecord struct {
	ID         string    `json:"id"`
	FileID     string    `json:"file_id"`
	RemoteURL  string    `json:"remote_url"`
	Message    string    `json:"message"`
	SharedDate time.Time `json:"shared_date"`
}
