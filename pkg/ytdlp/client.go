// Package ytdlp wraps the yt-dlp executable for metadata-only extraction.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Cause    error
}

func (e *ExecError) Error() string {
	cmdline := strings.TrimSpace(e.Cmd + " " + strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		return fmt.Sprintf("ytdlp: command failed (exit %d): %s", e.ExitCode, cmdline)
	}
	return fmt.Sprintf("ytdlp: command failed: %s", cmdline)
}

func (e *ExecError) Unwrap() error { return e.Cause }

type Client struct {
	// Path to yt-dlp executable. Defaults to "yt-dlp" (PATH lookup).
	Path string

	// AllowedExtractors restricts extraction to the named yt-dlp extractors
	// (--use-extractors). Unsupported sites then fail deterministically
	// instead of falling through to whatever the generic scraper finds.
	AllowedExtractors []string

	// ExtraArgs are always appended before per-call args.
	ExtraArgs []string

	execFn func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

func New() *Client {
	return &Client{Path: "yt-dlp"}
}

func (c *Client) exec(ctx context.Context, args ...string) (stdout []byte, stderr []byte, err error) {
	name := c.PathOrDefault()

	fullArgs := make([]string, 0, len(c.ExtraArgs)+len(args)+2)
	if len(c.AllowedExtractors) > 0 {
		fullArgs = append(fullArgs, "--use-extractors", strings.Join(c.AllowedExtractors, ","))
	}
	fullArgs = append(fullArgs, c.ExtraArgs...)
	fullArgs = append(fullArgs, args...)

	if c.execFn != nil {
		return c.execFn(ctx, name, fullArgs...)
	}

	slog.Debug("ytdlp: executing command", "cmd", name, "args", fullArgs)
	cmd := exec.CommandContext(ctx, name, fullArgs...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Info models the yt-dlp JSON fields the normalization pipeline consumes.
// The full JSON is preserved in Raw for quirk corrections that need to see
// fields not modeled here.
type Info struct {
	ID               string            `json:"id"`
	DisplayID        string            `json:"display_id"`
	Title            string            `json:"title"`
	Channel          string            `json:"channel"`
	Uploader         string            `json:"uploader"`
	UploaderID       string            `json:"uploader_id"`
	UploadDate       string            `json:"upload_date"`
	Duration         *float64          `json:"duration"`
	WebpageURL       string            `json:"webpage_url"`
	WebpageURLDomain string            `json:"webpage_url_domain"`
	Extractor        string            `json:"extractor"`
	Entries          []json.RawMessage `json:"entries,omitempty"`
	Raw              json.RawMessage   `json:"-"`
}

// FirstEntry returns the Info for the first entry when the result is a
// playlist/collection, or the receiver itself otherwise.
func (i *Info) FirstEntry() (*Info, error) {
	if len(i.Entries) == 0 {
		return i, nil
	}
	raw := bytes.TrimSpace(i.Entries[0])
	entry := &Info{Raw: append([]byte(nil), raw...)}
	if err := json.Unmarshal(raw, entry); err != nil {
		return nil, fmt.Errorf("ytdlp: parse entry json: %w", err)
	}
	return entry, nil
}

// RawMap decodes the preserved raw JSON into a generic map. Callers get a
// fresh map each time; mutating it never affects the Info.
func (i *Info) RawMap() (map[string]any, error) {
	out := map[string]any{}
	if len(i.Raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(i.Raw, &out); err != nil {
		return nil, fmt.Errorf("ytdlp: decode raw json: %w", err)
	}
	return out, nil
}

// GetInfo runs yt-dlp in "metadata only" mode and parses its JSON output.
// It uses: --dump-single-json --skip-download --no-warnings
func (c *Client) GetInfo(ctx context.Context, url string, extraArgs ...string) (*Info, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	args := []string{"--dump-single-json", "--skip-download", "--no-warnings"}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	raw := bytes.TrimSpace(stdout)
	info := &Info{Raw: append([]byte(nil), raw...)}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("ytdlp: parse json: %w", err)
	}

	return info, nil
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return "yt-dlp"
	}
	return c.Path
}

// Version returns `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := c.exec(ctx, "--version")
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), []string{"--version"}, stdout, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

func wrapExecError(cmd string, args []string, stdout []byte, stderr []byte, cause error) error {
	exitCode := 0
	var ee *exec.ExitError
	if errors.As(cause, &ee) {
		exitCode = ee.ExitCode()
	}

	return &ExecError{
		Cmd:      cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
		Cause:    cause,
	}
}
