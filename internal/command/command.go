package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

type envKeyType struct{}

// EnvKey is a [context.Context.WithValue] key that can be used to override the environment of
// commands that are executed by this package.  The value must have type []string where each entry
// has the form "name=value".
var EnvKey = envKeyType{}

// New constructs a new [exec.Cmd] with the given arguments, leaving its stdout and stderr connected
// to stdout and stderr.
func New(ctx context.Context, wd string, args ...string) *exec.Cmd {
	slog.DebugContext(ctx, "running command", "wd", wd, "args", args)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = wd
	if v := ctx.Value(EnvKey); v != nil {
		cmd.Env = v.([]string)
	}
	slog.DebugContext(ctx, "command environment", "env", cmd.Env)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// PipeBoth is like [New] except it also connects the command's stdin and stdout to pipes and both
// sides are returned, for long-lived subprocesses that consume a stream of requests and produce a
// stream of responses (e.g. an external heuristic worker).
func PipeBoth(ctx context.Context, wd string, args ...string) (cmd *exec.Cmd, stdin io.WriteCloser, stdout io.ReadCloser, err error) {
	cmd = New(ctx, wd, args...)
	cmd.Stdout = nil
	if stdin, err = cmd.StdinPipe(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get stdin pipe for command %q: %w",
			strings.Join(args, " "), err)
	}
	if stdout, err = cmd.StdoutPipe(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get stdout pipe for command %q: %w",
			strings.Join(args, " "), err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to start command %q: %w", strings.Join(args, " "), err)
	}
	return cmd, stdin, stdout, nil
}
