// Package grepper shells out to ripgrep for whole-word textual search
// (spec.md §6), following the subprocess-and-parse style of
// vvoland-cagent/pkg/tools/builtin/bash.go's exec.CommandContext usage.
package grepper

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Hit is one matched line.
type Hit struct {
	Path   string
	Line   int
	Column int
	Text   string
}

// windowsDrivePrefix matches a leading "C:" style drive letter so it isn't
// mistaken for the path:line:col separator.
var windowsDrivePrefix = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Search runs `rg --color=never --no-heading --line-number --column -w
// <pattern> <workspace>` and parses its output. Exit code 0 means matches
// were found; 1 means no matches (not an error); any other exit code is
// treated as a tool failure and yields an empty result, not an error, per
// spec.md §6.
func Search(ctx context.Context, workspace, pattern string) ([]Hit, error) {
	cmd := exec.CommandContext(ctx, "rg", "--color=never", "--no-heading", "--line-number", "--column", "-w", pattern, workspace)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ExitCode() == 1 {
				return nil, nil
			}
			return nil, nil // other exit codes: tool failure, yield empty
		}
		return nil, nil // rg not found / failed to start: yield empty
	}

	return parseOutput(stdout.String()), nil
}

func parseOutput(output string) []Hit {
	var hits []Hit
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		if hit, ok := parseLine(line); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

// parseLine splits "path:line:col:text", accounting for a Windows drive
// letter prefix ("C:\foo\bar.go:10:5:text") that would otherwise be
// mistaken for the first colon separator.
func parseLine(line string) (Hit, bool) {
	rest := line
	var driveLetter string
	if m := windowsDrivePrefix.FindString(rest); m != "" {
		driveLetter = rest[:2]
		rest = rest[2:]
	}

	parts := strings.SplitN(rest, ":", 4)
	if len(parts) < 4 {
		return Hit{}, false
	}

	lineNo, err := strconv.Atoi(parts[1])
	if err != nil {
		return Hit{}, false
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return Hit{}, false
	}

	return Hit{
		Path:   driveLetter + parts[0],
		Line:   lineNo,
		Column: col,
		Text:   parts[3],
	}, true
}
