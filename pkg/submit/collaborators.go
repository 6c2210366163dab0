package submit

import "context"

// Identity carries the authenticated user and tenant the submission runs as.
// Passed explicitly so the pipeline stays testable without a simulated
// session; collaborators that need ambient context read it from here.
type Identity struct {
	UserID   string
	TenantID string
}

// CreatedAct is the persistence collaborator's answer to a successful
// submission.
type CreatedAct struct {
	ID             string
	AssignedNumber string
}

// ActStore is the external persistence and document collaborator.
type ActStore interface {
	CreateGeneratedAct(ctx context.Context, payload []byte, identity Identity) (CreatedAct, error)
	UploadDocument(ctx context.Context, actID string, document []byte) (storagePath string, err error)
	RecordDocumentVersion(ctx context.Context, actID, storagePath string, metadata map[string]string) error
}

// DocumentRenderer renders the act's template text against the validated,
// serialized tree. Opaque to the engine; the default implementation lives in
// the gotemplate subpackage.
type DocumentRenderer interface {
	RenderDocument(ctx context.Context, templateText string, data map[string]any) ([]byte, error)
}
