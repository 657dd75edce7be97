package core

import (
	"fmt"
	"regexp"
	"strings"

	"mad-scanner/internal/types"
)

const artifactExtension = ".apk"

// Word characters are Unicode letters, digits and '_'.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// ParseInputNames splits an input list into task names. Blank lines and
// lines starting with '#' are dropped; duplicates are kept.
func ParseInputNames(content string) []string {
	var names []string
	for _, line := range strings.Split(content, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// BuildRequests derives a store query and an artifact file name for each
// input name. File names are unique case-insensitively; later collisions
// get a numeric suffix. BaseFileName keeps the name before the suffix.
func BuildRequests(names []string) []types.ArtifactRequest {
	requests := make([]types.ArtifactRequest, 0, len(names))
	taken := map[string]struct{}{}
	for _, name := range names {
		stem := nonWordPattern.ReplaceAllString(name, "_")
		chosen := stem
		for n := 2; ; n++ {
			if _, ok := taken[strings.ToLower(chosen)]; !ok {
				break
			}
			chosen = fmt.Sprintf("%s_%d", stem, n)
		}
		taken[strings.ToLower(chosen)] = struct{}{}
		requests = append(requests, types.ArtifactRequest{
			InputName:    name,
			Query:        SearchQuery(name),
			FileName:     chosen + artifactExtension,
			BaseFileName: stem + artifactExtension,
		})
	}
	return requests
}

// SearchQuery collapses punctuation runs to single spaces.
func SearchQuery(name string) string {
	return strings.TrimSpace(nonWordPattern.ReplaceAllString(name, " "))
}
