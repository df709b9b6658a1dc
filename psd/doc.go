// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package psd reads Photoshop documents (PSD and PSB) far enough to import
// mockup templates from them.
//
// Decode parses the container: header, image resources, layer records with
// their channel data and tagged blocks, and the merged composite. Layers are
// returned as a tree of *Group, *SmartObject, *Pixel and *Text nodes.
//
// Extract turns each smart object into an insert area of a
// mockup.MockupDefinition. Perspective-warped smart objects keep their
// distorted corners; all others get their placed rectangle.
//
//	ex, err := psd.Extract(f, psd.ExtractOptions{Name: "Desk card"})
//	if err != nil {
//	    return err // *mockup.ParseError: the file is not a readable PSD
//	}
//	for _, w := range ex.Warnings {
//	    log.Println(w)
//	}
//
// Only 8, 16 and 32-bit RGB and grayscale pixel data is decoded; other
// modes still yield the layer tree and insert areas, without previews.
package psd
