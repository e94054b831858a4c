package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Renders the manifest as a Dockerfile.
//
// The output is deterministic: map-backed fields are emitted in sorted order
// so an unchanged manifest always renders to identical bytes. This matters
// because the rendered Dockerfile is part of the build-context digest that
// keys the build cache.
func (m *Manifest) Dockerfile() []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n", m.Base)

	for _, k := range sortedKeys(m.Env) {
		fmt.Fprintf(&b, "ENV %s=%q\n", k, m.Env[k])
	}

	if m.Workdir != "" {
		fmt.Fprintf(&b, "WORKDIR %s\n", m.Workdir)
	}

	for _, c := range m.Copy {
		fmt.Fprintf(&b, "COPY %s %s\n", c.Src, c.Dest)
	}

	for _, cmd := range m.Run {
		fmt.Fprintf(&b, "RUN %s\n", cmd)
	}

	fmt.Fprintf(&b, "ENTRYPOINT %s\n", jsonList(m.Entrypoint))

	return []byte(b.String())
}

// Formats a command as a JSON-array exec form (["a", "b"]).
//
// Exec form avoids shell wrapping, so the entry command receives no implicit
// arguments and signals reach the process directly.
func jsonList(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Returns the map keys in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
