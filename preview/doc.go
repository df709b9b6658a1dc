// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package preview keeps a mockup preview in step with a design that is
// being edited.
//
// A Synchronizer subscribes to a Source of change notifications. Bursts of
// notifications are coalesced: a capture runs only once the source has been
// quiet for the debounce window (200ms by default). Each capture produces a
// TemplateSnapshot that is handed to a RenderFunc, usually a closure over
// mockup.Compositor.Render.
//
// A failed or panicking capture is logged and skipped; the previous snapshot
// stays current.
package preview
