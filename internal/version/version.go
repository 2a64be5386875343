package version

import "fmt"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/fcelec/cablesize/internal/version.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"

	Author = "FC Elec"
	Year   = "2026"
)

// Standard is the wiring standard the sizing rules follow.
const Standard = "NF C 15-100"

// Summary is the one-line build description, e.g.
// "cablesize v0.3.0 (built 2026-10-19, commit 1a2b3c4)".
func Summary() string {
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("cablesize v%s (built %s, commit %s)", Version, BuildTime, commit)
}
