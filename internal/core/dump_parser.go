package core

import (
	"regexp"
	"sort"
	"strings"

	"mad-scanner/internal/types"
)

var (
	packageLinePattern    = regexp.MustCompile(`(?m)^\s*package:\s*(?:name=')?([^\s']+)`)
	capabilityLinePattern = regexp.MustCompile(`(?m)^\s*uses-permission(?:-sdk-23|-sdk-m)?:\s*(?:name=')?([^\s']+)`)
	nativeCodeLinePattern = regexp.MustCompile(`(?m)^\s*(?:alt-)?native-code:(.*)$`)
	quotedTokenPattern    = regexp.MustCompile(`'([^']+)'`)
)

// ExtractPackageName returns the package identity declared in a dump.
// The second result is false when the dump carries no package line.
func ExtractPackageName(dump string) (string, bool) {
	match := packageLinePattern.FindStringSubmatch(dump)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ExtractCapabilities returns the sorted set of requested permissions.
func ExtractCapabilities(permissionsDump string) []string {
	found := map[string]struct{}{}
	for _, match := range capabilityLinePattern.FindAllStringSubmatch(permissionsDump, -1) {
		found[match[1]] = struct{}{}
	}
	return sortedSet(found)
}

// ExtractExecutionTargets returns the sorted set of ABIs listed on
// native-code lines. Architecture-independent artifacts yield an empty set.
func ExtractExecutionTargets(badgingDump string) []string {
	found := map[string]struct{}{}
	for _, line := range nativeCodeLinePattern.FindAllStringSubmatch(badgingDump, -1) {
		for _, token := range quotedTokenPattern.FindAllStringSubmatch(line[1], -1) {
			target := strings.TrimSpace(token[1])
			if target != "" {
				found[target] = struct{}{}
			}
		}
	}
	return sortedSet(found)
}

// ParseDumps builds the metadata model from both dumps. The badging dump
// is only consulted for the package name when the permissions dump lacks it.
func ParseDumps(permissionsDump string, badgingDump string) types.ArtifactMetadata {
	name, ok := ExtractPackageName(permissionsDump)
	if !ok {
		name, ok = ExtractPackageName(badgingDump)
	}
	return types.ArtifactMetadata{
		PackageName:      name,
		HasPackageName:   ok,
		Capabilities:     ExtractCapabilities(permissionsDump),
		ExecutionTargets: ExtractExecutionTargets(badgingDump),
	}
}

func sortedSet(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for value := range values {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
