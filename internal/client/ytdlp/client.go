package ytdlp

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/mediagrab/internal/logger"
)

// Client defines the interface for driving the yt-dlp executable.
type Client interface {
	// CheckInstalled verifies that the tool can be started and returns its version.
	CheckInstalled(ctx context.Context) (string, error)
	// Probe fetches metadata for url without downloading anything.
	Probe(ctx context.Context, url string) (*MediaMetadata, error)
	// Run executes the tool with args, streaming its output, and returns the exit code.
	Run(ctx context.Context, args []string) (int, error)
	// Executable returns the path or name of the tool binary.
	Executable() string
}

// ClientImpl implements the Client interface on top of os/exec.
type ClientImpl struct {
	// executable is the tool binary name or path.
	executable string
	// stdout receives the tool's standard output during downloads.
	stdout io.Writer
	// stderr receives the tool's standard error during downloads.
	stderr io.Writer
}

const (
	// DefaultExecutable is looked up in PATH when no tool path is configured.
	DefaultExecutable = "yt-dlp"

	// interruptGracePeriod is how long a child gets to exit after an interrupt before it is killed.
	interruptGracePeriod = 5 * time.Second

	// maxProbeLineLength bounds a single JSON line; large playlists produce big objects.
	maxProbeLineLength = 64 * 1024 * 1024
)

// NewClient creates a client that streams child output to the terminal.
func NewClient(executable string) Client {
	if strings.TrimSpace(executable) == "" {
		executable = DefaultExecutable
	}

	return &ClientImpl{
		executable: executable,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// Executable returns the path or name of the tool binary.
func (c *ClientImpl) Executable() string {
	return c.executable
}

// CheckInstalled verifies that the tool can be started and returns its version.
func (c *ClientImpl) CheckInstalled(ctx context.Context) (string, error) {
	path, err := exec.LookPath(c.executable)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToolNotInstalled, err)
	}

	output, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrToolNotInstalled, err)
	}

	return strings.TrimSpace(string(output)), nil
}

// Probe fetches metadata for url without downloading anything.
// Only the first line of output is parsed: multi-item URLs print one object per line.
// Every failure is reported as ErrMetadataNotFound.
func (c *ClientImpl) Probe(ctx context.Context, url string) (*MediaMetadata, error) {
	cmd := c.command(ctx, "--dump-json", "--no-warnings", "--skip-download", "--", url)

	var stdout bytes.Buffer

	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataNotFound, err)
	}

	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxProbeLineLength)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMetadataNotFound, err)
		}

		return nil, fmt.Errorf("%w: empty output", ErrMetadataNotFound)
	}

	metadata, err := ParseMetadata(bytes.TrimSpace(scanner.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataNotFound, err)
	}

	return metadata, nil
}

// Run executes the tool with args, streaming its output, and returns the exit code.
// A non-zero exit is returned together with ErrNonZeroExit.
// If the process cannot be started, the exit code is -1.
func (c *ClientImpl) Run(ctx context.Context, args []string) (int, error) {
	cmd := c.command(ctx, args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	logger.Debugf(ctx, "Running %s %s", c.executable, strings.Join(args, " "))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return exitCode(cmd), ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), fmt.Errorf("%w: %d", ErrNonZeroExit, exitErr.ExitCode())
	}

	return -1, fmt.Errorf("failed to start %s: %w", c.executable, err)
}

// command builds a child process that is interrupted, then killed, when ctx is canceled.
func (c *ClientImpl) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.executable, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGracePeriod

	return cmd
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}

	return cmd.ProcessState.ExitCode()
}
