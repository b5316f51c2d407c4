package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"x0x0/internal/models"
	"x0x0/internal/remote"
	"x0x0/pkg/errors"
	"x0x0/pkg/logger"
)

// UploadState represents the lifecycle state of the single upload slot
type UploadState string

const (
	// StateIdle means no upload attempt is active
	StateIdle UploadState = "idle"
	// StateRequested means an attempt was accepted but the transfer has not
	// started yet (pre-flight validation, task construction)
	StateRequested UploadState = "requested"
	// StateInFlight means the transfer is running
	StateInFlight UploadState = "in_flight"
)

// UploadOptions carries the optional upload parameters
type UploadOptions struct {
	Secret    bool // request a hard-to-guess URL
	Retention int  // requested retention in hours; 0 = host default
}

// ProgressObserver receives whole-percentage progress events for the active
// upload attempt
type ProgressObserver func(percent int)

// UploadManager interface defines the contract for the upload task lifecycle.
// Exactly one attempt may be active at a time; Start rejects a second caller
// instead of relying on the frontend to disable its trigger.
type UploadManager interface {
	// Start runs one upload attempt to completion and returns its terminal
	// outcome. Caller errors (attempt already active, pre-flight rejection)
	// are returned as errors; transport-level failures, duplicates and
	// cancellation are outcomes, not errors.
	Start(ctx context.Context, file models.PickedFile, opts UploadOptions) (*models.UploadOutcome, error)

	// Cancel aborts the active attempt, if any. The attempt terminates with
	// OutcomeCanceled and never touches the registry.
	Cancel()

	// State returns the current lifecycle state
	State() UploadState

	// Subscribe registers a progress observer and returns its subscription
	// id. Observers are detached automatically when the attempt terminates.
	Subscribe(observer ProgressObserver) string

	// Unsubscribe removes a progress observer
	Unsubscribe(id string)
}

// UploadManagerImpl implements the UploadManager interface
type UploadManagerImpl struct {
	client      remote.Client
	registry    RegistryManager
	maxFileSize int64
	logger      *logger.Logger

	mu        sync.Mutex
	state     UploadState
	cancel    context.CancelFunc
	observers map[string]ProgressObserver
}

// NewUploadManager creates a new UploadManager instance
func NewUploadManager(client remote.Client, registry RegistryManager, maxFileSize int64) *UploadManagerImpl {
	return &UploadManagerImpl{
		client:      client,
		registry:    registry,
		maxFileSize: maxFileSize,
		logger:      logger.NewWithComponent("upload"),
		state:       StateIdle,
		observers:   make(map[string]ProgressObserver),
	}
}

// Start runs one upload attempt to completion
func (um *UploadManagerImpl) Start(ctx context.Context, file models.PickedFile, opts UploadOptions) (*models.UploadOutcome, error) {
	if err := um.acquire(); err != nil {
		return nil, err
	}

	if err := um.validate(file); err != nil {
		um.release()
		return nil, err
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	um.beginTransfer(cancel)
	defer um.release()
	defer cancel()

	progressCh := make(chan remote.UploadProgress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progressCh {
			um.notifyObservers(p.Percentage)
		}
	}()

	result, err := um.client.Upload(attemptCtx, remote.UploadRequest{
		FilePath:  file.URI,
		Name:      file.Name,
		MimeType:  file.MimeType,
		Secret:    opts.Secret,
		Retention: opts.Retention,
		Progress:  progressCh,
	})
	close(progressCh)
	<-done

	if err != nil {
		if errors.IsCanceled(err) {
			um.logger.InfoWithFields("Upload canceled", map[string]interface{}{"name": file.Name})
			return &models.UploadOutcome{
				Kind:    models.OutcomeCanceled,
				Message: fmt.Sprintf("Upload of %s canceled.", file.Name),
			}, nil
		}
		um.logger.ErrorWithError("Upload failed", err)
		return &models.UploadOutcome{
			Kind:    models.OutcomeFailed,
			Message: errors.ClassifyError(err).GetUserMessage(),
		}, nil
	}

	if result.Duplicate() {
		um.logger.InfoWithFields("Upload matched existing remote content", map[string]interface{}{
			"name": file.Name,
			"url":  result.URL,
		})
		return &models.UploadOutcome{
			Kind:      models.OutcomeDuplicate,
			RemoteURL: result.URL,
			Message:   fmt.Sprintf("File already exists: %s", result.URL),
		}, nil
	}

	record := &models.FileRecord{
		ID:        models.DeriveFileID(file.Name),
		Name:      file.Name,
		Size:      file.Size,
		MimeType:  file.MimeType,
		LocalURI:  file.URI,
		RemoteURL: result.URL,
		Token:     result.Token,
		Expires:   result.Expires,
	}
	if record.MimeType == "" {
		record.MimeType = remote.DefaultMimeType
	}

	if err := um.registry.Put(ctx, record); err != nil {
		// The remote file exists but is not tracked locally (orphaned
		// upload). The upload itself succeeded, so the outcome still
		// carries the record; the registry warning is logged here.
		um.logger.WarnWithError("Upload succeeded but the record could not be persisted", err)
	}

	return &models.UploadOutcome{
		Kind:    models.OutcomeUploaded,
		Record:  record,
		Message: fmt.Sprintf("%s uploaded", file.Name),
	}, nil
}

// Cancel aborts the active attempt, if any
func (um *UploadManagerImpl) Cancel() {
	um.mu.Lock()
	cancel := um.cancel
	um.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State returns the current lifecycle state
func (um *UploadManagerImpl) State() UploadState {
	um.mu.Lock()
	defer um.mu.Unlock()
	return um.state
}

// Subscribe registers a progress observer
func (um *UploadManagerImpl) Subscribe(observer ProgressObserver) string {
	um.mu.Lock()
	defer um.mu.Unlock()
	id := uuid.NewString()
	um.observers[id] = observer
	return id
}

// Unsubscribe removes a progress observer
func (um *UploadManagerImpl) Unsubscribe(id string) {
	um.mu.Lock()
	defer um.mu.Unlock()
	delete(um.observers, id)
}

// acquire claims the single upload slot
func (um *UploadManagerImpl) acquire() error {
	um.mu.Lock()
	defer um.mu.Unlock()
	if um.state != StateIdle {
		return errors.NewAppError(errors.ErrUploadInFlight, "an upload attempt is already active", nil)
	}
	um.state = StateRequested
	return nil
}

// beginTransfer transitions Requested -> InFlight and stores the cancel hook
func (um *UploadManagerImpl) beginTransfer(cancel context.CancelFunc) {
	um.mu.Lock()
	defer um.mu.Unlock()
	um.state = StateInFlight
	um.cancel = cancel
}

// release returns the slot to Idle and detaches all progress observers
func (um *UploadManagerImpl) release() {
	um.mu.Lock()
	defer um.mu.Unlock()
	um.state = StateIdle
	um.cancel = nil
	um.observers = make(map[string]ProgressObserver)
}

// validate applies the pre-flight checks; nothing is sent over the network
// for a file that fails them
func (um *UploadManagerImpl) validate(file models.PickedFile) error {
	if file.Name == "" || file.URI == "" {
		return errors.NewAppError(errors.ErrNoFileSelected, "no file selected", nil)
	}
	if file.Size == 0 {
		return errors.NewAppError(errors.ErrFileEmpty, fmt.Sprintf("%s is empty", file.Name), nil)
	}
	if file.Size > um.maxFileSize {
		return errors.NewAppError(errors.ErrFileTooBig,
			fmt.Sprintf("%s is %d bytes, over the %d byte limit", file.Name, file.Size, um.maxFileSize), nil)
	}
	return nil
}

// notifyObservers delivers a progress percentage to all subscribers
func (um *UploadManagerImpl) notifyObservers(percent int) {
	um.mu.Lock()
	observers := make([]ProgressObserver, 0, len(um.observers))
	for _, obs := range um.observers {
		observers = append(observers, obs)
	}
	um.mu.Unlock()

	for _, obs := range observers {
		obs(percent)
	}
}
