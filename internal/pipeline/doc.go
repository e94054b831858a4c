// Package pipeline orchestrates the guarded publish run.
//
// A publish executes five steps in order: checkout, registry login, build
// preparation (input fingerprinting), build-and-push, and digest emission.
// The pipeline is Building while steps run and returns to Idle on completion
// or failure. The first failing step aborts all later steps; nothing is
// retried, and failures surface as a non-zero exit for operators.
//
// The build-and-push step consults the build cache: when the current
// context fingerprint has a recorded digest and the registry still serves
// it for the tag, the build and push are skipped and the recorded digest
// becomes the result.
//
// Publishes for the same branch are serialized through a PID lock file, so
// the pushed tag reflects the run that held the lock rather than whichever
// overlapping run finished last.
//
// Example usage:
//
//	pub := pipeline.NewPublisher(b, reg, bc, pipeline.Options{
//	    Workdir:  ".",
//	    Manifest: m,
//	    Tag:      "example/costwatch:latest",
//	    Event:    ev,
//	})
//	result, err := pub.Run(ctx)
//	if err != nil {
//	    return err
//	}
package pipeline
