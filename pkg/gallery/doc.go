// Package gallery lays content out on a sphere and drives the per-frame
// visibility and hover state of the placed items.
//
// The package is independent of any renderer. A frame typically calls
// UpdateVisibility with the camera's Viewer snapshot and then Hover.Update
// with the pointer ray, after which the renderer draws every visible item
// at its current Scale and Opacity.
package gallery
