package models

// OutcomeKind classifies the terminal state of an upload attempt
type OutcomeKind string

const (
	// OutcomeUploaded means the host accepted the file and issued a deletion
	// token; a registry record was created
	OutcomeUploaded OutcomeKind = "uploaded"
	// OutcomeDuplicate means the content already existed remotely; the host
	// returned its URL but no deletion token, and no record was created
	OutcomeDuplicate OutcomeKind = "duplicate"
	// OutcomeCanceled means the caller canceled the attempt before completion
	OutcomeCanceled OutcomeKind = "canceled"
	// OutcomeFailed means the upload failed (transport error or rejection)
	OutcomeFailed OutcomeKind = "failed"
)

// UploadOutcome is the terminal result of one upload attempt
type UploadOutcome struct {
	Kind      OutcomeKind `json:"kind"`
	Record    *FileRecord `json:"record,omitempty"`     // set when Kind == OutcomeUploaded
	RemoteURL string      `json:"remote_url,omitempty"` // set when Kind == OutcomeDuplicate
	Message   string      `json:"message"`              // user-facing summary
}
