package adapters

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mad-scanner/internal/ports"
	"mad-scanner/internal/types"
)

// DirectorySource resolves artifacts from a local directory of previously
// downloaded APKs instead of the network store.
type DirectorySource struct {
	Dir string
}

func NewDirectorySource(dir string) DirectorySource {
	return DirectorySource{Dir: dir}
}

func (s DirectorySource) Acquire(ctx context.Context, request types.ArtifactRequest, destPath string) error {
	if strings.TrimSpace(s.Dir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("source directory is empty")
	}
	if err := ctx.Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("request canceled").
			WithCause(err)
	}
	srcPath, ok := s.locate(request)
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("artifact not found in " + s.Dir + ": " + request.InputName)
	}
	if sameFile(srcPath, destPath) {
		return nil
	}
	return copyArtifact(srcPath, destPath)
}

func (s DirectorySource) locate(request types.ArtifactRequest) (string, bool) {
	var candidates []string
	names := []string{request.FileName, request.BaseFileName, request.InputName, request.InputName + artifactSuffix}
	for _, name := range names {
		if strings.TrimSpace(name) == "" || name == artifactSuffix {
			continue
		}
		candidates = append(candidates, filepath.Join(s.Dir, filepath.Base(name)))
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

const artifactSuffix = ".apk"

func sameFile(a string, b string) bool {
	left, err := os.Stat(a)
	if err != nil {
		return false
	}
	right, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(left, right)
}

func copyArtifact(srcPath string, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to create artifact directory").
			WithCause(err)
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open artifact").
			WithCause(err)
	}
	defer src.Close()
	dst, err := os.Create(destPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("failed to create artifact copy").
			WithCause(err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy artifact").
			WithCause(err)
	}
	if err := dst.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close artifact copy").
			WithCause(err)
	}
	return nil
}

var _ ports.ArtifactSourcePort = DirectorySource{}
