package adapters

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mad-scanner/internal/shared"
	"mad-scanner/internal/types"
)

const fakeAaptScript = `case "$3" in
  *broken*) echo "W/ziparchive: Unable to open '$3': Invalid file" >&2; exit 1 ;;
esac
[ "$1" = "dump" ] || exit 64
case "$2" in
  permissions)
    echo "package: com.fake.app"
    echo "uses-permission: name='android.permission.INTERNET'"
    ;;
  badging)
    echo "package: name='com.fake.app' versionCode='3' versionName='0.3'"
    echo "native-code: 'x86' 'x86_64'"
    ;;
  *) exit 2 ;;
esac
`

func TestAaptInspectorDump(t *testing.T) {
	inspector := NewAaptInspector(writeScript(t, "aapt2", fakeAaptScript))

	permissions, err := inspector.Dump(t.Context(), types.DumpModePermissions, "app.apk")
	require.NoError(t, err)
	want := "package: com.fake.app\nuses-permission: name='android.permission.INTERNET'\n"
	if diff := cmp.Diff(want, permissions); diff != "" {
		t.Fatalf("unexpected permissions dump (-want +got):\n%s", diff)
	}

	badging, err := inspector.Dump(t.Context(), types.DumpModeBadging, "app.apk")
	require.NoError(t, err)
	assert.Contains(t, badging, "native-code: 'x86' 'x86_64'")
}

func TestAaptInspectorNonZeroExit(t *testing.T) {
	inspector := NewAaptInspector(writeScript(t, "aapt2", fakeAaptScript))

	_, err := inspector.Dump(t.Context(), types.DumpModePermissions, "broken.apk")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Contains(t, shared.ErrorMessage(err), "Invalid file")
}

func TestAaptInspectorMissingTool(t *testing.T) {
	inspector := NewAaptInspector("/nonexistent/aapt2")
	_, err := inspector.Dump(t.Context(), types.DumpModeBadging, "app.apk")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestAaptInspectorRejectsUnknownMode(t *testing.T) {
	inspector := NewAaptInspector("")
	assert.Equal(t, "aapt2", inspector.ToolPath)
	_, err := inspector.Dump(t.Context(), types.DumpMode("xmltree"), "app.apk")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
