// Package fakexmllint installs a shell script that behaves like xmllint for
// the invocations gomeca uses. Documents containing "<invalid" fail validation.
package fakexmllint

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const script = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "xmllint: using libxml version 20913" >&2
  exit 0
fi
if [ "$1" = "--nonet" ]; then
  shift
fi
if [ "$1" = "--dropdtd" ]; then
  if [ ! -f "$2" ]; then
    echo "warning: failed to load external entity \"$2\"" >&2
    exit 1
  fi
  sed '/<!DOCTYPE/d' "$2"
  exit 0
fi
if [ "$1" = "--noout" ] && [ "$2" = "--dtdvalid" ]; then
  input=$(cat)
  if [ ! -f "$3" ]; then
    echo "Could not parse DTD $3" >&2
    exit 3
  fi
  if [ -z "$input" ]; then
    echo "-:1: parser error : Document is empty" >&2
    exit 1
  fi
  case "$input" in
    *"<invalid"*)
      echo "-:2: element invalid: validity error : No declaration for element invalid" >&2
      echo "Document - does not validate against $3" >&2
      exit 3
      ;;
  esac
  exit 0
fi
echo "unsupported arguments: $*" >&2
exit 1
`

// Install writes the fake xmllint into a temporary directory, prepends that
// directory to PATH for the duration of the test and returns the script path.
func Install(t testing.TB) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake xmllint needs a posix shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "xmllint")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("cannot write fake xmllint: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return path
}
