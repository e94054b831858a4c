// Package event models the trigger that starts a publish run.
//
// An event is either read from the CI environment (event name, ref, and
// commit variables injected by the runner) or derived from the local git
// repository, where an invocation counts as a push to the checked-out
// branch. The guard condition lives here: only a push whose branch matches
// the publish branch qualifies.
package event
