// Package sandbox provisions disposable environments for documentation
// verification.
//
// The provisioner prefers an isolated Docker container; when the docker
// tooling is missing, broken, or slow to start it degrades to a fresh temp
// directory on the host. Acquisition never fails: verification must proceed
// even without isolation tooling, under a best-effort posture.
package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two handle variants.
type Kind string

const (
	// KindContainer is a running Docker container.
	KindContainer Kind = "container"
	// KindDirectory is an ephemeral host directory.
	KindDirectory Kind = "directory"
)

// Handle identifies one live verification environment. It is exclusively
// owned by the run that acquired it and must not be referenced after Release.
type Handle struct {
	Kind Kind

	// ContainerID and WorkingDir are set for KindContainer.
	ContainerID string
	WorkingDir  string

	// Path is set for KindDirectory.
	Path string

	// Image is the base image the container was started from, if any.
	Image string
}

// DefaultImage is used when no image hint is configured.
const DefaultImage = "ubuntu:22.04"

// containerStartTimeout bounds how long we wait for docker to start a
// container before degrading to the directory fallback.
const containerStartTimeout = 60 * time.Second

// Provisioner creates and tears down verification environments.
type Provisioner struct {
	dockerPath string // empty when docker is not on PATH
}

// NewProvisioner creates a Provisioner, probing once for the docker binary.
func NewProvisioner() *Provisioner {
	path, err := exec.LookPath("docker")
	if err != nil {
		path = ""
	}
	return &Provisioner{dockerPath: path}
}

// Acquire provisions a verification environment. It attempts a container
// from imageHint first and falls back to a fresh temp directory when
// container creation is unavailable or times out. Acquire never returns an
// error; the returned handle is always usable.
func (p *Provisioner) Acquire(ctx context.Context, imageHint string) *Handle {
	image := imageHint
	if image == "" {
		image = DefaultImage
	}

	if p.dockerPath != "" {
		if h := p.startContainer(ctx, image); h != nil {
			return h
		}
	}
	return p.fallbackDir()
}

// startContainer runs a detached container that idles until released.
// Returns nil on any failure; the caller falls back to a directory.
func (p *Provisioner) startContainer(ctx context.Context, image string) *Handle {
	const workingDir = "/workspace"

	startCtx, cancel := context.WithTimeout(ctx, containerStartTimeout)
	defer cancel()

	cmd := exec.CommandContext(startCtx, p.dockerPath,
		"run", "-d", "--rm", "-w", workingDir, image, "sleep", "3600")
	output, err := cmd.Output()
	if err != nil {
		// Treat timeouts and start failures identically to missing tooling.
		fmt.Fprintf(os.Stderr, "warning: container start failed for %s, falling back to temp dir: %v\n", image, err)
		return nil
	}

	containerID := strings.TrimSpace(string(output))
	if containerID == "" {
		return nil
	}

	return &Handle{
		Kind:        KindContainer,
		ContainerID: containerID,
		WorkingDir:  workingDir,
		Image:       image,
	}
}

// fallbackDir allocates a fresh, uniquely named directory on the host.
func (p *Provisioner) fallbackDir() *Handle {
	dir := filepath.Join(os.TempDir(), "doc-verify-"+uuid.NewString()[:8])
	if err := os.MkdirAll(dir, 0755); err != nil {
		// Last resort: hand back the system temp dir itself. Verification in
		// a shared directory is still better than no verification.
		fmt.Fprintf(os.Stderr, "warning: failed to create verification dir: %v\n", err)
		return &Handle{Kind: KindDirectory, Path: os.TempDir()}
	}
	return &Handle{Kind: KindDirectory, Path: dir}
}

// Release tears down the environment. Failures are swallowed and surfaced
// only as warnings: resource leakage is preferred over crashing the pipeline.
func (p *Provisioner) Release(ctx context.Context, h *Handle) {
	if h == nil {
		return
	}

	switch h.Kind {
	case KindContainer:
		// Release must run even when the run context was canceled; teardown
		// gets its own bounded context.
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		cmd := exec.CommandContext(stopCtx, p.dockerPath, "stop", h.ContainerID)
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to stop container %s: %v\n", h.ContainerID, err)
		}
	case KindDirectory:
		if err := os.RemoveAll(h.Path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove verification dir %s: %v\n", h.Path, err)
		}
	}
}
