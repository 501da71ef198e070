// Package shell runs the shell lines extensions use as commands and actions.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/roc/pkg/errors"
	"github.com/arthur-debert/roc/pkg/logging"
)

// Interpreter runs the lines
const Interpreter = "/bin/sh"

// Command is a shell line and where to run it
type Command struct {
	Line string
	// Dir is the working directory, the current one when empty
	Dir string
	// Args are passed to the line as positional parameters
	Args []string
	Env  map[string]string
}

// Executor runs commands through the shell
type Executor struct {
	logger zerolog.Logger
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// NewExecutor creates an executor attached to the process streams
func NewExecutor() *Executor {
	return &Executor{
		logger: logging.GetLogger("shell"),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	}
}

// Run executes the command and waits for it to finish
func (e *Executor) Run(ctx context.Context, c Command) error {
	if c.Line == "" {
		return errors.New(errors.ErrInvalidInput, "shell command requires a line")
	}

	if c.Dir != "" {
		if _, err := os.Stat(c.Dir); os.IsNotExist(err) {
			return errors.Newf(errors.ErrNotFound, "working directory does not exist: %s", c.Dir)
		}
	}

	line := c.Line
	args := []string{"-c"}
	if len(c.Args) > 0 {
		line += ` "$@"`
	}
	args = append(args, line, "roc")
	args = append(args, c.Args...)

	cmd := exec.CommandContext(ctx, Interpreter, args...)
	cmd.Dir = c.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Stdin = e.Stdin
	cmd.Env = os.Environ()
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, c.Env[k]))
	}

	e.logger.Info().
		Str("line", c.Line).
		Strs("args", c.Args).
		Str("workingDir", c.Dir).
		Msg("Executing command")

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrCommandExecute, "command %q failed", c.Line).
			WithDetail("dir", c.Dir)
	}
	return nil
}
