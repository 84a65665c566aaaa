package cloud

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	tferrors "github.com/tilefetch/tilefetch/internal/errors"
)

// DefaultTool is the storage CLI invoked by CLIProvider.
const DefaultTool = "gcloud"

// CLIProvider implements Provider by running `gcloud storage`.
type CLIProvider struct {
	tool      string
	extraArgs []string
}

// NewCLIProvider creates a provider that shells out to tool.
func NewCLIProvider(tool string, extraArgs ...string) *CLIProvider {
	if tool == "" {
		tool = DefaultTool
	}
	return &CLIProvider{tool: tool, extraArgs: extraArgs}
}

// Name returns the provider name
func (p *CLIProvider) Name() string {
	return "gcloud storage"
}

// Available checks the tool is on PATH.
func (p *CLIProvider) Available() error {
	if _, err := exec.LookPath(p.tool); err != nil {
		return tferrors.NewToolNotFoundError(p.tool, err)
	}
	return nil
}

// List runs `storage ls <uri>` and returns the non-empty output lines.
func (p *CLIProvider) List(ctx context.Context, uri string) ([]string, error) {
	stdout, stderr, err := p.run(ctx, "ls", uri)
	if err != nil {
		return nil, tferrors.NewListError(uri, err).WithOutput(stderr)
	}

	var entries []string
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

// Fetch runs `storage cp <uri> <localPath>`.
func (p *CLIProvider) Fetch(ctx context.Context, uri, localPath string) error {
	if _, stderr, err := p.run(ctx, "cp", uri, localPath); err != nil {
		return tferrors.NewFetchError(uri, err).WithOutput(stderr)
	}
	return nil
}

// CopyRecursive runs `storage cp -r <uri> <localDir>`.
func (p *CLIProvider) CopyRecursive(ctx context.Context, uri, localDir string) error {
	if _, stderr, err := p.run(ctx, "cp", "-r", uri, localDir); err != nil {
		return tferrors.NewCopyError(uri, err).WithOutput(stderr)
	}
	return nil
}

func (p *CLIProvider) run(ctx context.Context, sub string, args ...string) (string, string, error) {
	argv := append([]string{"storage", sub}, p.extraArgs...)
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, p.tool, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
