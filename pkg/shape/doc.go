// Package shape turns skinned shape blocks into drawable vertex buffers.
//
// A Shape runs in two phases. Update re-reads geometry and the skin
// binding when block data changes; Transform rebuilds the bone weight
// table if the binding moved. TransformShapes then runs every frame and
// either blends the raw vertices through the live bone transforms or
// copies them unchanged.
//
// Nothing here returns errors for bad block data. Missing fields, short
// weight lists, dangling bones and out of range indices degrade to empty
// or partial buffers and are counted in Diagnostics.
//
// A Shape is not safe for concurrent use; callers serialize frames.
package shape
