// Package mockup composites rendered designs into photographed product
// scenes.
//
// # Overview
//
// A MockupDefinition describes a scene: a base photograph, an optional
// lighting/shadow overlay, and one or more insert areas. Each insert area is
// a quadrilateral in canvas space that receives a design snapshot through a
// perspective warp. The Compositor renders definitions through one of two
// interchangeable backends: a wgpu compute renderer evaluating the full
// homography per pixel, or a CPU renderer splitting each quad into two
// affine triangles.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/mockup"
//	    _ "github.com/gogpu/mockup/gpu" // enables GPU compositing
//	)
//
//	c := mockup.New(mockup.DirResolver{Root: "assets"})
//	defer c.Destroy()
//
//	res := c.Render(ctx, def, mockup.Snapshots{
//	    "front": mockup.NewSnapshot("tpl-1", designImage),
//	})
//	if !res.Success {
//	    return res.Err
//	}
//	_ = res.Image.SavePNG("mockup.png")
//
// # Pipeline
//
// Rendering runs three passes on a canvas of CanvasSize:
//   - Base: the base image scaled to cover the canvas.
//   - Designs: insert areas in array order; later areas draw over earlier
//     ones. Areas without a snapshot are skipped silently, degenerate quads
//     are skipped with a warning.
//   - Overlay: blended over the whole composite with its blend mode.
//
// # Coordinate System
//
// Canvas and image coordinates have their origin at the top-left, X
// increasing right and Y increasing down. Pixel (i, j) covers
// [i, i+1) x [j, j+1).
//
// # Sub-packages
//
//   - geom: points, quads, homographies and the triangle-affine split
//   - gpu: blank import registering the GPU renderer
//   - editor: interactive quad editing model
//   - psd: smart-object extraction from PSD files
//   - preview: debounced live preview of a changing design
package mockup

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
