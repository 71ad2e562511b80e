// Package imaging turns image files into the grayscale matrices the HOG pipeline
// works on, and renders results back onto images.
//
// # Coordinate System
//
// Two conventions meet here:
//   - image.Image values use Go's (x = column, y = row) with (0,0) at the top-left.
//   - *mat.Dense luminance matrices are indexed (row, column), so m.At(y, x) is the
//     pixel at image point (x, y).
//
// Rectangles follow image.Rectangle: Min is inclusive, Max exclusive, except in
// Annotate, which outlines Max as well so clamped detection boxes stay visible.
//
// # Luminance
//
// ToGray applies ITU-R BT.601 weights and rounds to whole levels on a 0-255 scale.
// Matrices passed through a Resizer are quantised to 8 bits the same way.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Matrices returned by LoadGray are shared
// between callers and must not be modified.
//
// # Performance Considerations
//
// Decoded images and their luminance matrices are both cached, so a large image
// costs roughly nine bytes per pixel beyond the file itself. Evict drops one path,
// which the server does when image_load is called with reload.
package imaging
