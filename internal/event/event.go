package event

import (
	"fmt"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Kind of trigger that started a publish run.
type Type string

const (
	Push        Type = "push"
	PullRequest Type = "pull_request"
)

// Environment variables describing the triggering event, as injected by the
// CI runner.
const (
	envEventName = "CI_EVENT_NAME"
	envRef       = "CI_REF"
	envCommit    = "CI_COMMIT"
)

// Describes the trigger for a publish run.
type Event struct {
	Type   Type   // Kind of event (push, pull_request).
	Ref    string // Full ref (e.g. "refs/heads/main") or bare branch name.
	Commit string // Commit hash, when known.
}

// Returns the branch name for the event.
//
// A "refs/heads/" prefix is stripped; anything else is returned as-is, so
// bare branch names work too. Pull-request merge refs have no branch and
// return the ref unchanged.
func (e Event) Branch() string {
	return strings.TrimPrefix(e.Ref, "refs/heads/")
}

// Reports whether the event qualifies for publishing to the given branch.
//
// Only pushes qualify, and only when the target branch matches. This is the
// guard condition: pull requests and pushes to other branches reach it and
// are suppressed.
func (e Event) Qualifies(branch string) bool {
	return e.Type == Push && e.Branch() == branch
}

// Reads the triggering event from the CI environment.
//
// Returns false when the event name variable is unset, which means the run
// was started outside a CI runner.
func FromEnviron() (Event, bool) {
	name := os.Getenv(envEventName)
	if name == "" {
		return Event{}, false
	}

	return Event{
		Type:   Type(name),
		Ref:    os.Getenv(envRef),
		Commit: os.Getenv(envCommit),
	}, true
}

// Derives an event from the repository at dir.
//
// A local invocation is treated as a push to the currently checked-out
// branch. Detached HEADs carry the commit but no branch, so they never
// qualify for publishing.
func FromRepository(dir string) (Event, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrNoEvent, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrNoEvent, err)
	}

	ev := Event{
		Type:   Push,
		Commit: head.Hash().String(),
	}
	if head.Name().IsBranch() {
		ev.Ref = string(head.Name())
	}

	return ev, nil
}

// Resolves the triggering event, preferring the CI environment over local
// repository state.
func Resolve(dir string) (Event, error) {
	if ev, ok := FromEnviron(); ok {
		return ev, nil
	}
	return FromRepository(dir)
}
