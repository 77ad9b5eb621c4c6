package xmllint

import (
	"fmt"
	"runtime"
	"strings"
)

var installCommands = []struct {
	goos, label, command string
}{
	{"darwin", "mac", "brew install xmlstarlet"},
	{"linux", "debian", "apt install libxml2-utils"},
	{"windows", "windows", "choco install xsltproc"},
}

// InstallHint lists installation instructions. The entry for the running
// platform comes first.
func InstallHint() string {
	return installHint(runtime.GOOS)
}

func installHint(goos string) string {
	var sb strings.Builder
	sb.WriteString("To install:")
	for _, pass := range []bool{true, false} {
		for _, ic := range installCommands {
			if (ic.goos == goos) != pass {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n  %-8s %s", ic.label+":", ic.command))
		}
	}
	return sb.String()
}
