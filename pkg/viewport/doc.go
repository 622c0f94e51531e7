// Package viewport computes the scale and translation that present bounded
// content inside a container.
//
// [Fit] is the pure fitting function: it centers a content box inside the
// container with padding, never upscaling past 1:1. [Fitter] keeps the last
// measured container and content so that [Fitter.Reset] always yields the
// same transform a fresh Fit would.
//
// The remaining helpers ([Pan], [ZoomAt], [ToWorld], [ToScreen]) are the
// transform arithmetic used by interactive hosts. A transform maps a world
// point w to the screen point w*Scale + (TranslateX, TranslateY).
//
// Content boxes come from two places: [BoxFromSVG] reads the root viewBox
// of an externally rendered diagram and [BoxOf] measures a layout snapshot.
package viewport
