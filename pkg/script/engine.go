// Package script provides the sandboxed Lisp console for Cirrus. Scripts
// drive a live editor session programmatically: creating resources,
// rule-checked connections, compartments, and stack instances in bulk, which
// is how topology templates and migrations are authored without clicking
// through the canvas.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/hollisb/cirrus/pkg/catalog"
	"github.com/hollisb/cirrus/pkg/editor"
)

// EvalTimeout is the hard limit for a single script run.
const EvalTimeout = 5 * time.Second

// EvalError represents a non-fatal error encountered while running a script,
// such as a parse error or a failed builtin.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine runs scripts against one editor session. Each run gets a fresh
// sandboxed zygomys environment; the session is the only shared state.
type Engine struct {
	session *editor.Session
	kinds   []catalog.RelationshipKind
	types   *catalog.Catalog

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a script engine bound to a session and the catalogs the
// builtins resolve against.
func NewEngine(session *editor.Session, types *catalog.Catalog, kinds []catalog.RelationshipKind) *Engine {
	if types == nil {
		types = catalog.New(nil)
	}
	return &Engine{session: session, types: types, kinds: kinds}
}

// runResult passes a finished evaluation through the timeout channel.
type runResult struct {
	errors []EvalError
	err    error
}

// Run executes a script against the live session.
//
// Return semantics:
//   - On success: nil errors + nil error.
//   - On parse/builtin failure: eval errors + nil error.
//   - On fatal failure (timeout, panic): nil + error.
//
// On timeout the evaluation goroutine may still be running; a cancellation
// flag makes every subsequent builtin fail fast so an abandoned run cannot
// keep mutating the session.
func (e *Engine) Run(source string) ([]EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	var cancelled atomic.Bool
	ch := make(chan runResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- runResult{err: fmt.Errorf("panic during script run: %v", r)}
			}
		}()
		evalErrs, err := e.run(source, &cancelled)
		ch <- runResult{errors: evalErrs, err: err}
	}()

	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, fmt.Errorf("script run superseded by newer request")
		}
		return res.errors, res.err
	case <-timer.C:
		cancelled.Store(true)
		return nil, fmt.Errorf("script run timed out after %s", EvalTimeout)
	}
}

// run performs the actual evaluation in a fresh sandbox. Sandbox mode keeps
// user code away from the filesystem and syscalls.
func (e *Engine) run(source string, cancelled *atomic.Bool) ([]EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	e.registerBuiltins(env, cancelled)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygoError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return parseZygoError(err), nil
	}
	return nil, nil
}

// linePattern matches zygomys errors of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches the plainer "line N: ..." form.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygoError converts a zygomys error into EvalError values, extracting
// line numbers when the message carries them.
func parseZygoError(err error) []EvalError {
	msg := err.Error()
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
