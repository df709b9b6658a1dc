package mockup

import (
	"errors"
	"fmt"
)

// ErrFallbackToCPU indicates the GPU renderer cannot handle this operation.
// The caller should transparently re-run it on the CPU renderer.
var ErrFallbackToCPU = errors.New("mockup: falling back to CPU rendering")

// ErrDestroyed is returned by a Compositor after Destroy has been called.
var ErrDestroyed = errors.New("mockup: compositor destroyed")

// DefinitionError reports a malformed or incomplete mockup definition, such
// as a missing base layer or non-finite geometry. It is fatal for the render
// call that hit it.
type DefinitionError struct {
	Field  string // JSON path of the offending field, e.g. "layers.base.src"
	Reason string
	Err    error
}

func (e *DefinitionError) Error() string {
	msg := fmt.Sprintf("mockup: invalid definition: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// BackendInitError reports that neither the GPU nor the CPU renderer could be
// initialized. It is fatal for the Compositor instance.
type BackendInitError struct {
	GPU error // nil if no GPU renderer was attempted
	CPU error
}

func (e *BackendInitError) Error() string {
	if e.GPU == nil {
		return fmt.Sprintf("mockup: no backend available: cpu: %v", e.CPU)
	}
	return fmt.Sprintf("mockup: no backend available: gpu: %v; cpu: %v", e.GPU, e.CPU)
}

func (e *BackendInitError) Unwrap() []error {
	if e.GPU == nil {
		return []error{e.CPU}
	}
	return []error{e.GPU, e.CPU}
}

// AssetLoadError reports that an image source could not be fetched or
// decoded. It is scoped to the layer or insert area that referenced it.
type AssetLoadError struct {
	Src string
	Err error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("mockup: load asset %q: %v", e.Src, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// ParseError reports an unreadable PSD container. It is fatal only for the
// import call that produced it.
type ParseError struct {
	Section string // container section being read, e.g. "header"
	Offset  int64  // byte offset where parsing stopped
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mockup: parse %s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
