// Package manifest defines the declarative build recipe for the image.
//
// A manifest names the pinned base image, the environment and working
// directory, the dependency-install commands, the files copied from the
// build context, and the entry command. Loading validates required fields
// up front so a broken manifest fails before any build work starts.
//
// The manifest renders to a Dockerfile with deterministic output; the
// rendered bytes participate in the build-context digest used by the
// build cache.
package manifest
