// Package hook runs a user provided command after sidecar writes, eg. to
// poke a player into rescanning its library.
package hook

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

const markerPath = "<path>"

type Hook struct {
	command string
	args    []string
}

func New(conf string) (*Hook, error) {
	parts, err := shlex.Split(conf)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no command provided")
	}
	return &Hook{command: parts[0], args: parts[1:]}, nil
}

// Run executes the command for one written sidecar, substituting the sidecar
// path for any <path> argument.
func (h *Hook) Run(ctx context.Context, path string) error {
	var args []string
	for _, arg := range h.args {
		switch arg {
		case markerPath:
			args = append(args, path)
		default:
			args = append(args, arg)
		}
	}

	cmd := exec.CommandContext(ctx, h.command, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run cmd: %w", err)
	}
	return nil
}

func (h *Hook) String() string {
	args := fmt.Sprintf("%q", append([]string{h.command}, h.args...))
	args = strings.TrimPrefix(args, "[")
	args = strings.TrimSuffix(args, "]")
	return fmt.Sprintf("hook (%s)", args)
}
