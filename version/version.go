package version

import "fmt"

// set by the linker, e.g. -ldflags "-X github.com/ocfl-archive/gomeca/version.Version=v1.0.0"
var (
	Version = "dev-0.0.0"
	Commit  = "000000000000000000000000000000000badf00d"
	Date    = "1970-01-01T00:00:01Z"
	BuiltBy = "dev"
)

// ShortCommit returns a short commit hash.
func ShortCommit() string {
	if len(Commit) < 7 {
		return Commit
	}
	return Commit[:7]
}

func String() string {
	return fmt.Sprintf("gomeca %s (%s, %s, built by %s)", Version, ShortCommit(), Date, BuiltBy)
}
