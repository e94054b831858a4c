// Package registry handles authentication, pushes, and digest lookups
// against the container registry.
//
// Pushes go through the Docker daemon, which reports the final manifest
// digest in its output stream. Digest lookups talk to the registry
// directly with a manifest HEAD request, so cache validation never
// transfers layer data.
package registry
