package metadatastore

import "errors"

// Sentinel errors for callers that need to tell missing records apart from
// storage failures. The store wraps them with contextual detail, so match
// with errors.Is.
var (
	ErrRunNotFound          = errors.New("run not found")
	ErrRunClosed            = errors.New("run already finished")
	ErrModelVersionNotFound = errors.New("model version not found")
	ErrAliasNotFound        = errors.New("model alias not found")
)
