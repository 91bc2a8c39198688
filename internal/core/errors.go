package core

import "errors"

// ErrKind names the stage of the clip pipeline a failure came from, so
// the API layer can map it to a response status without inspecting
// error strings.
type ErrKind string

const (
	KindMalformed ErrKind = "malformed"
	KindFetch     ErrKind = "fetch"
	KindImage     ErrKind = "image"
	KindPublish   ErrKind = "publish"
)

// ClipError tags a pipeline failure with its kind.
type ClipError struct {
	Kind    ErrKind
	Message string
	Err     error
}

func (e *ClipError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ClipError) Unwrap() error {
	return e.Err
}

func clipErr(kind ErrKind, msg string, err error) *ClipError {
	return &ClipError{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind carried by err, or "" for untagged errors.
func KindOf(err error) ErrKind {
	var ce *ClipError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
