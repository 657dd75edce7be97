package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/shared"
	"mad-scanner/internal/types"
)

// CommandDetector runs an external risk-detection engine as
// `<path> [args...] <artifact>` and reads its verdict from stdout, either
// as JSON or YAML:
//
//	packed_file: [assets/inner.apk]
//	detected_malware: {TrojanX: 2, Clean: 0}
type CommandDetector struct {
	Path string
	Args []string
}

// UnconfiguredDetector fails every detection; reports degrade to
// metadata only.
type UnconfiguredDetector struct{}

type detectorVerdict struct {
	PackedFile      []string       `json:"packed_file" yaml:"packed_file"`
	DetectedMalware map[string]int `json:"detected_malware" yaml:"detected_malware"`
}

func NewCommandDetector(path string, args []string) CommandDetector {
	return CommandDetector{
		Path: strings.TrimSpace(path),
		Args: append([]string(nil), args...),
	}
}

func (d CommandDetector) Detect(ctx context.Context, artifactPath string) (types.Verdict, error) {
	if d.Path == "" {
		return UnconfiguredDetector{}.Detect(ctx, artifactPath)
	}
	args := append(append([]string(nil), d.Args...), artifactPath)
	cmd := exec.CommandContext(ctx, d.Path, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		cause := shared.CommandError(stderr.Bytes(), err)
		return types.Verdict{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("risk detection failed: %s", cause.Error())).
			WithCause(cause)
	}
	return ParseVerdict(stdout.Bytes())
}

// ParseVerdict decodes detector output into a Verdict.
func ParseVerdict(data []byte) (types.Verdict, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return types.Verdict{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("risk detection produced no verdict")
	}
	var raw detectorVerdict
	var err error
	if bytes.HasPrefix(trimmed, []byte("{")) {
		err = json.Unmarshal(trimmed, &raw)
	} else {
		err = yaml.Unmarshal(trimmed, &raw)
	}
	if err != nil {
		return types.Verdict{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse risk detection verdict").
			WithCause(err)
	}
	verdict := types.Verdict{
		BundledArtifacts: append([]string{}, raw.PackedFile...),
		Findings:         map[string]int{},
	}
	for name, count := range raw.DetectedMalware {
		verdict.Findings[name] = count
	}
	return verdict, nil
}

func (UnconfiguredDetector) Detect(context.Context, string) (types.Verdict, error) {
	return types.Verdict{}, errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("risk detection engine not configured")
}

var _ ports.DetectorPort = CommandDetector{}
var _ ports.DetectorPort = UnconfiguredDetector{}
