// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeAapt2Script answers `dump permissions|badging <apk>` with a package
// named after the artifact file.
const FakeAapt2Script = `name=$(basename "$3" .apk)
case "$2" in
permissions)
  printf "package: com.example.%s\nuses-permission: name='android.permission.INTERNET'\n" "$name"
  ;;
badging)
  printf "package: name='com.example.%s' versionCode='1' versionName='1.0'\nnative-code: 'arm64-v8a' 'x86_64'\n" "$name"
  ;;
*)
  echo "unsupported dump mode: $2" >&2
  exit 1
  ;;
esac
`

// FakeDetectorScript flags artifacts whose name contains "evil" and fails
// on artifacts whose name contains "broken".
const FakeDetectorScript = `case "$1" in
*broken*)
  echo "engine crashed" >&2
  exit 3
  ;;
*evil*)
  echo '{"packed_file": ["assets/inner.apk"], "detected_malware": {"Trojan.Dropper": 1}}'
  ;;
*)
  echo '{"packed_file": [], "detected_malware": {}}'
  ;;
esac
`

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteScript writes an executable POSIX shell script and returns its path.
func WriteScript(t *testing.T, name string, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}
