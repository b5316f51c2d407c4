package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"x0x0/pkg/errors"
	"x0x0/pkg/logger"
)

const (
	// Response headers issued by the hosting service
	headerToken   = "X-Token"
	headerExpires = "X-Expires"

	// DefaultMimeType is used when the picker could not determine a type
	DefaultMimeType = "*/*"
)

// UploadProgress represents the progress of a file upload
type UploadProgress struct {
	BytesSent  int64 `json:"bytes_sent"`
	TotalBytes int64 `json:"total_bytes"`
	Percentage int   `json:"percentage"`
}

// UploadRequest describes one file upload
type UploadRequest struct {
	FilePath  string // local path of the content to send
	Name      string // display name used as the remote filename
	MimeType  string // declared content type; empty defaults to DefaultMimeType
	Secret    bool   // request a hard-to-guess URL
	Retention int    // requested retention in hours; 0 = host default

	// Progress, when non-nil, receives progress updates while the body is
	// streamed. Sends never block; updates are dropped if the receiver lags.
	Progress chan<- UploadProgress
}

// UploadResult is the parsed response of a successful (2xx) upload
type UploadResult struct {
	URL     string // permanent URL of the hosted file, trimmed
	Token   string // deletion token; empty when the content already existed
	Expires string // expiry as epoch millis, verbatim from the host
}

// Duplicate reports whether the host matched existing content instead of
// storing a new file. The host signals this by omitting the deletion token.
func (r *UploadResult) Duplicate() bool {
	return r.Token == ""
}

// Client defines the interface for the remote hosting service
type Client interface {
	// Upload streams one file to the hosting service
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Delete removes a hosted file using its deletion token and returns the
	// host's response body
	Delete(ctx context.Context, url, token string) (string, error)

	// Download fetches a hosted file into destPath
	Download(ctx context.Context, url, destPath string) error
}

// HTTPClient implements Client against the fixed 0x0.st-style HTTP protocol
type HTTPClient struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHTTPClient creates a new protocol client for the given endpoint
func NewHTTPClient(endpoint, userAgent string) *HTTPClient {
	return &HTTPClient{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{},
		logger:     logger.NewWithComponent("remote"),
	}
}

// Upload streams one file to the hosting service as a multipart POST.
// The multipart body is produced through a pipe so the file content is never
// buffered in memory; progress is derived from bytes read out of the file.
func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrFileNotFound, "failed to open file for upload")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrFileNotFound, "failed to stat file for upload")
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	reader := &progressReader{
		reader:   file,
		total:    info.Size(),
		progress: req.Progress,
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		pw.CloseWithError(writeUploadBody(writer, req, mimeType, reader))
	}()
	// The transport can keep draining the request body after Do returns when
	// the host responds before the body completes. Tear the pipe down and join
	// the writer so no progress send can outlive this call; callers may close
	// the progress channel as soon as Upload returns.
	defer func() {
		pr.Close()
		<-writeDone
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrInternalError, "failed to build upload request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil, errors.NewAppError(errors.ErrUploadCanceled, "upload canceled", err)
		}
		return nil, errors.ClassifyError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrNetworkError, "failed to read upload response")
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnWithFields("Upload rejected by host", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return nil, errors.NewRemoteError(errors.ErrUploadRejected, resp.StatusCode, text)
	}

	result := &UploadResult{
		URL:     text,
		Token:   resp.Header.Get(headerToken),
		Expires: resp.Header.Get(headerExpires),
	}

	c.logger.InfoWithFields("Upload completed", map[string]interface{}{
		"url":       result.URL,
		"duplicate": result.Duplicate(),
	})
	return result, nil
}

// writeUploadBody writes the multipart form: the file part plus the optional
// secret and expires fields
func writeUploadBody(writer *multipart.Writer, req UploadRequest, mimeType string, content io.Reader) error {
	part, err := createFilePart(writer, req.Name, mimeType)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to stream file content: %w", err)
	}

	if req.Secret {
		// Presence of the field is the flag; the value stays empty
		if err := writer.WriteField("secret", ""); err != nil {
			return fmt.Errorf("failed to write secret field: %w", err)
		}
	}
	if req.Retention > 0 {
		if err := writer.WriteField("expires", strconv.Itoa(req.Retention)); err != nil {
			return fmt.Errorf("failed to write expires field: %w", err)
		}
	}

	return writer.Close()
}

// createFilePart creates the "file" form part carrying the declared MIME type
func createFilePart(writer *multipart.Writer, name, mimeType string) (io.Writer, error) {
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name="file"; filename=%q`, name),
	}
	header["Content-Type"] = []string{mimeType}
	return writer.CreatePart(header)
}

// Delete removes a hosted file by POSTing its deletion token to the file URL
func (c *HTTPClient) Delete(ctx context.Context, url, token string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("token", token); err != nil {
		return "", errors.WrapError(err, errors.ErrInternalError, "failed to build delete form")
	}
	// Empty "delete" field marks the request as a deletion
	if err := writer.WriteField("delete", ""); err != nil {
		return "", errors.WrapError(err, errors.ErrInternalError, "failed to build delete form")
	}
	if err := writer.Close(); err != nil {
		return "", errors.WrapError(err, errors.ErrInternalError, "failed to finish delete form")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrInternalError, "failed to build delete request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.ClassifyError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrNetworkError, "failed to read delete response")
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewRemoteError(errors.ErrDeleteRejected, resp.StatusCode, text)
	}

	c.logger.InfoWithFields("Remote file deleted", map[string]interface{}{"url": url})
	return text, nil
}

// Download fetches a hosted file into destPath. The file is written to a
// temporary name first and renamed into place so a failed fetch never leaves
// a truncated cache entry behind.
func (c *HTTPClient) Download(ctx context.Context, url, destPath string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapError(err, errors.ErrInternalError, "failed to build download request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.WrapError(err, errors.ErrDownloadFailed, "download request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.NewRemoteError(errors.ErrDownloadFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.WrapError(err, errors.ErrDownloadFailed, "failed to create cache directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return errors.WrapError(err, errors.ErrDownloadFailed, "failed to create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return errors.WrapError(err, errors.ErrDownloadFailed, "failed to write downloaded content")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.ErrDownloadFailed, "failed to finish downloaded file")
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return errors.WrapError(err, errors.ErrDownloadFailed, "failed to move downloaded file into place")
	}

	c.logger.InfoWithFields("Downloaded remote file", map[string]interface{}{
		"url":  url,
		"dest": destPath,
	})
	return nil
}
