// Package builder produces container images from build manifests.
//
// A build renders the manifest to a Dockerfile, streams the context
// directory plus the rendered file to a Docker daemon as a tar archive,
// and reads the daemon's output stream to completion. Failures are
// reported in-band by the daemon and surface as ErrBuild; there is no
// recovery logic.
//
// The builder also fingerprints build inputs: a content digest over the
// context files and the rendered Dockerfile. The fingerprint keys the
// build cache, so an unchanged context skips the daemon entirely.
package builder
