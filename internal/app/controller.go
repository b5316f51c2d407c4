package app

import (
	"context"
	"fmt"
	"sync"

	"x0x0/internal/manager"
	"x0x0/internal/models"
	"x0x0/internal/remote"
	"x0x0/pkg/errors"
	"x0x0/pkg/logger"
)

// Frontend defines the interface the rendered UI must implement. The
// controller never talks to widgets directly; whatever renders the screens
// (mobile view, desktop window, CLI) plugs in here.
type Frontend interface {
	SetStatus(status string)
	UpdateFiles(files []*models.FileRecord)
	ShowProgress(percent int)
	ShowToast(message string)
	ShowAlert(title, message string)
}

// Clipboard is the platform clipboard integration (fire-and-forget)
type Clipboard interface {
	SetString(text string) error
}

// Controller coordinates the upload lifecycle, the local registry and the
// frontend. It owns the in-memory projection of the registry and applies the
// synchronization policy: authoritative refresh on view focus, optimistic
// updates after uploads and deletions.
type Controller struct {
	registry   manager.RegistryManager
	uploads    manager.UploadManager
	cache      manager.CacheManager
	shares     manager.ShareManager
	settings   manager.SettingsManager
	expiration manager.ExpirationManager
	client     remote.Client

	frontend  Frontend
	clipboard Clipboard
	logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	// files is the in-memory projection of the registry. refreshGen
	// invalidates any in-flight focus refresh whenever the projection is
	// mutated, so a stale listing can never overwrite a newer optimistic
	// update.
	files      []*models.FileRecord
	refreshGen uint64
}

// Deps bundles the controller's collaborators
type Deps struct {
	Registry   manager.RegistryManager
	Uploads    manager.UploadManager
	Cache      manager.CacheManager
	Shares     manager.ShareManager
	Settings   manager.SettingsManager
	Expiration manager.ExpirationManager
	Client     remote.Client
	Frontend   Frontend
	Clipboard  Clipboard
}

// NewController creates a new application controller
func NewController(deps Deps) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		registry:   deps.Registry,
		uploads:    deps.Uploads,
		cache:      deps.Cache,
		shares:     deps.Shares,
		settings:   deps.Settings,
		expiration: deps.Expiration,
		client:     deps.Client,
		frontend:   deps.Frontend,
		clipboard:  deps.Clipboard,
		logger:     logger.NewWithComponent("controller"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Shutdown cancels any in-flight work owned by the controller
func (c *Controller) Shutdown() {
	c.uploads.Cancel()
	c.cancel()
}

// OnFocus performs the authoritative refresh of the in-memory file list from
// the registry. It is invoked on every view-focus transition; if the listing
// resolves after the projection was mutated in the meantime, the stale result
// is discarded.
func (c *Controller) OnFocus() {
	c.mu.Lock()
	c.refreshGen++
	gen := c.refreshGen
	c.mu.Unlock()

	records, err := c.registry.List(c.ctx)
	if err != nil {
		// Non-fatal: keep the last known-good projection
		c.logger.WarnWithError("Failed to refresh file list, keeping previous state", err)
		c.alert("Loading files", "Failed to load files.")
		return
	}

	c.mu.Lock()
	if gen != c.refreshGen {
		c.mu.Unlock()
		return
	}
	c.files = records
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.pushFiles(snapshot)
}

// Files returns a copy of the current in-memory projection
func (c *Controller) Files() []*models.FileRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// UploadFile drives one upload attempt to completion and applies the outcome
// to the registry projection. Progress is forwarded to the frontend.
func (c *Controller) UploadFile(ctx context.Context, file models.PickedFile, opts manager.UploadOptions) (*models.UploadOutcome, error) {
	subID := c.uploads.Subscribe(func(percent int) {
		if c.frontend != nil {
			c.frontend.ShowProgress(percent)
		}
	})
	defer c.uploads.Unsubscribe(subID)

	c.status(fmt.Sprintf("Uploading %s...", file.Name))

	outcome, err := c.uploads.Start(ctx, file, opts)
	if err != nil {
		msg := errors.ClassifyError(err).GetUserMessage()
		c.alert("File upload error", msg)
		c.status("Ready")
		return nil, err
	}

	switch outcome.Kind {
	case models.OutcomeUploaded:
		c.appendOptimistic(outcome.Record)
		c.toast(outcome.Message)
	case models.OutcomeDuplicate:
		c.alert("File upload", outcome.Message)
	case models.OutcomeCanceled:
		// No message beyond the implicit dismissal
	case models.OutcomeFailed:
		c.alert("File upload error", outcome.Message)
	}

	c.status("Ready")
	return outcome, nil
}

// CancelUpload aborts the in-flight upload attempt, if any
func (c *Controller) CancelUpload() {
	c.uploads.Cancel()
}

// DeleteFile removes a file remotely and, only on success, locally. A failed
// remote deletion leaves both storage and the projection untouched.
func (c *Controller) DeleteFile(ctx context.Context, id string) error {
	record, err := c.lookup(ctx, id)
	if err != nil {
		c.alert("Delete file", errors.ClassifyError(err).GetUserMessage())
		return err
	}

	if !record.Owned() {
		err := errors.NewAppError(errors.ErrTokenMissing,
			fmt.Sprintf("%s has no deletion token", record.Name), nil)
		c.alert("Delete file", err.GetUserMessage())
		return err
	}

	if _, err := c.client.Delete(ctx, record.RemoteURL, record.Token); err != nil {
		c.logger.ErrorWithError("Remote deletion failed", err)
		c.alert("Delete file", errors.ClassifyError(err).GetUserMessage())
		return err
	}

	if err := c.registry.Remove(ctx, record.ID); err != nil {
		// The remote copy is gone; the stale local record will be offered
		// again and the next deletion attempt will fail remotely. Surface
		// the storage problem rather than hiding it.
		c.alert("Delete file", errors.ClassifyError(err).GetUserMessage())
		return err
	}

	c.removeOptimistic(record.ID)
	c.toast(fmt.Sprintf("%s deleted.", record.Name))
	return nil
}

// ViewFile resolves a usable local path for the record's content, re-fetching
// from the remote URL when the cached copy is gone. A re-fetch failure aborts
// the view action without touching the registry.
func (c *Controller) ViewFile(ctx context.Context, id string) (*models.FileRecord, string, error) {
	record, err := c.lookup(ctx, id)
	if err != nil {
		c.alert("View file error", errors.ClassifyError(err).GetUserMessage())
		return nil, "", err
	}

	path, err := c.cache.EnsureLocal(ctx, record)
	if err != nil {
		c.alert("File retrieve error", errors.ClassifyError(err).GetUserMessage())
		return nil, "", err
	}
	return record, path, nil
}

// ShareFile hands the record's URL to the platform share sheet
func (c *Controller) ShareFile(ctx context.Context, id string) error {
	record, err := c.lookup(ctx, id)
	if err != nil {
		c.alert("Sharing failed", errors.ClassifyError(err).GetUserMessage())
		return err
	}
	if _, err := c.shares.ShareFile(ctx, record); err != nil {
		c.alert("Sharing failed", errors.ClassifyError(err).GetUserMessage())
		return err
	}
	return nil
}

// CopyURL copies the record's remote URL to the clipboard
func (c *Controller) CopyURL(ctx context.Context, id string) error {
	record, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	return c.copyToClipboard("URL copied to clipboard.", record.RemoteURL)
}

// CopyToken copies the record's deletion token to the clipboard
func (c *Controller) CopyToken(ctx context.Context, id string) error {
	record, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	return c.copyToClipboard("Token copied to clipboard.", record.Token)
}

// ExpiryLabel formats the record's expiry for display
func (c *Controller) ExpiryLabel(record *models.FileRecord) string {
	return c.expiration.FormatExpiry(record)
}

// LoadSettings returns the persisted application settings
func (c *Controller) LoadSettings(ctx context.Context) (*models.ApplicationSettings, error) {
	return c.settings.LoadSettings(ctx)
}

// SaveSettings validates and persists application settings
func (c *Controller) SaveSettings(ctx context.Context, settings *models.ApplicationSettings) error {
	return c.settings.SaveSettings(ctx, settings)
}

// lookup resolves a record, preferring the in-memory projection and falling
// back to the registry
func (c *Controller) lookup(ctx context.Context, id string) (*models.FileRecord, error) {
	c.mu.Lock()
	for _, record := range c.files {
		if record.ID == id {
			c.mu.Unlock()
			return record, nil
		}
	}
	c.mu.Unlock()
	return c.registry.Get(ctx, id)
}

// appendOptimistic adds a freshly uploaded record to the projection without
// waiting for a fresh listing. The record's storage write has already
// completed, so any listing started before this point is stale and gets
// invalidated via the generation counter.
func (c *Controller) appendOptimistic(record *models.FileRecord) {
	c.mu.Lock()
	c.refreshGen++
	// An id collision replaces the existing entry, mirroring the
	// last-write-wins upsert in storage
	replaced := false
	for i, existing := range c.files {
		if existing.ID == record.ID {
			c.files[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		c.files = append(c.files, record)
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.pushFiles(snapshot)
}

// removeOptimistic drops a deleted record from the projection
func (c *Controller) removeOptimistic(id string) {
	c.mu.Lock()
	c.refreshGen++
	files := c.files[:0]
	for _, record := range c.files {
		if record.ID != id {
			files = append(files, record)
		}
	}
	c.files = files
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.pushFiles(snapshot)
}

// snapshotLocked copies the projection; callers must hold c.mu
func (c *Controller) snapshotLocked() []*models.FileRecord {
	snapshot := make([]*models.FileRecord, len(c.files))
	copy(snapshot, c.files)
	return snapshot
}

// copyToClipboard writes text to the clipboard and confirms with a toast
func (c *Controller) copyToClipboard(toastMessage, text string) error {
	if text == "" {
		c.toast("Nothing to copy.")
		return nil
	}
	if c.clipboard == nil {
		return nil
	}
	if err := c.clipboard.SetString(text); err != nil {
		return errors.WrapError(err, errors.ErrInternalError, "clipboard write failed")
	}
	c.toast(toastMessage)
	return nil
}

func (c *Controller) pushFiles(files []*models.FileRecord) {
	if c.frontend != nil {
		c.frontend.UpdateFiles(files)
	}
}

func (c *Controller) status(status string) {
	if c.frontend != nil {
		c.frontend.SetStatus(status)
	}
}

func (c *Controller) toast(message string) {
	if c.frontend != nil {
		c.frontend.ShowToast(message)
	}
}

func (c *Controller) alert(title, message string) {
	if c.frontend != nil {
		c.frontend.ShowAlert(title, message)
	}
}
