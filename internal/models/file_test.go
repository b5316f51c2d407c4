package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveFileID(t *testing.T) {
	// MD5 of the display name, hex encoded
	assert.Equal(t, "5c6813f49dfba292cc1008edce1c90e2", DeriveFileID("report.pdf"))
	assert.Equal(t, DeriveFileID("a.txt"), DeriveFileID("a.txt"))
	assert.NotEqual(t, DeriveFileID("a.txt"), DeriveFileID("b.txt"))
}

func TestFileRecordRoundTrip(t *testing.T) {
	record := &FileRecord{
		ID:        DeriveFileID("report.pdf"),
		Name:      "report.pdf",
		Size:      1048576,
		MimeType:  "application/pdf",
		LocalURI:  "/cache/report.pdf",
		RemoteURL: "https://0x0.st/abcd.pdf",
		Token:     "tok123",
		Expires:   "1735689600000",
	}

	data, err := record.ToJSON()
	require.NoError(t, err)

	decoded, err := DecodeFileRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
	assert.Equal(t, CurrentSchemaVersion, decoded.SchemaVersion)
}

func TestDecodeFileRecordLegacyShape(t *testing.T) {
	// Version-1 records nested the picker fields under a "file" object
	legacy := `{
		"id": "abc123",
		"file": {"name": "photo.png", "size": 2048, "mimeType": "image/png", "uri": "/cache/photo.png"},
		"url": "https://0x0.st/xyz.png",
		"token": "tok456",
		"expires": "1735689600000"
	}`

	record, err := DecodeFileRecord(legacy)
	require.NoError(t, err)

	assert.Equal(t, "abc123", record.ID)
	assert.Equal(t, "photo.png", record.Name)
	assert.Equal(t, int64(2048), record.Size)
	assert.Equal(t, "image/png", record.MimeType)
	assert.Equal(t, "/cache/photo.png", record.LocalURI)
	assert.Equal(t, "https://0x0.st/xyz.png", record.RemoteURL)
	assert.Equal(t, "tok456", record.Token)
	assert.Equal(t, "1735689600000", record.Expires)
	assert.Equal(t, CurrentSchemaVersion, record.SchemaVersion)
}

func TestDecodeFileRecordRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "this is not json"},
		{"empty object", "{}"},
		{"legacy without id", `{"file": {"name": "x"}, "url": "https://0x0.st/x"}`},
		{"wrong type", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFileRecord(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestFileRecordOwned(t *testing.T) {
	owned := &FileRecord{Token: "tok123"}
	observed := &FileRecord{Token: ""}

	assert.True(t, owned.Owned())
	assert.False(t, observed.Owned())
}

func TestExpiresTime(t *testing.T) {
	record := &FileRecord{Expires: "1735689600000"}
	expires, err := record.ExpiresTime()
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1735689600000), expires)

	_, err = (&FileRecord{Expires: ""}).ExpiresTime()
	assert.Error(t, err)

	_, err = (&FileRecord{Expires: "soon"}).ExpiresTime()
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{512, "512 B"},
		{1000, "1.0 kB"},
		{1048576, "1.0 MB"},
		{536870912, "536.9 MB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatSize(tt.bytes))
	}
}
