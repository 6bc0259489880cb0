// Package engine evaluates scene scripts. It wraps zygomys in a sandboxed
// environment, registers the primitive builtins and collects the shapes a
// script declares into a scene.Scene.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/primmesh/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a parse or runtime error in a script.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning flags a shape whose parameters were clamped.
type EvalWarning struct {
	Item    string
	Message string
}

func (w EvalWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Item, w.Message)
}

// EvalResult is everything one evaluation produced.
type EvalResult struct {
	Scene    *scene.Scene
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine evaluates scripts. It is safe for concurrent use; every call runs
// in a fresh sandbox, and a call started later supersedes earlier ones.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout time.Duration
	log     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds a single evaluation. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger handed to evaluated scenes.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an Engine with EvalTimeout.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the scene it declares.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	res, err := e.Run(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Scene, res.Errors, nil
}

// Run is Evaluate with warnings.
func (e *Engine) Run(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		ch <- e.evaluate(source)
	}()

	res, err := waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
	if err != nil {
		return EvalResult{}, err
	}
	return EvalResult{Scene: res.scene, Errors: res.errors, Warnings: res.warnings}, nil
}

// evaluate runs source in a fresh sandbox.
func (e *Engine) evaluate(source string) evalResult {
	sc := scene.New(scene.WithLogger(e.log))

	// Empty source is a valid script with an empty scene.
	if strings.TrimSpace(source) == "" {
		return evalResult{scene: sc}
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, sc)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}

	return evalResult{scene: sc, warnings: clampWarnings(sc)}
}

// clampWarnings reports every item whose shape differs from its clamped form.
func clampWarnings(sc *scene.Scene) []EvalWarning {
	var warnings []EvalWarning
	for _, it := range sc.Items() {
		norm := it.Shape.Normalize()
		if norm == it.Shape {
			continue
		}
		warnings = append(warnings, EvalWarning{
			Item:    it.Name,
			Message: fmt.Sprintf("%s %+v clamped to %s %+v", it.Shape.Kind(), it.Shape, norm.Kind(), norm),
		})
	}
	return warnings
}

// linePattern matches the "Error on line N:" prefix zygomys puts on errors.
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*`)

// linePatternShort matches a leading "line N:".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*`)

// parseZygomysError converts a zygomys error into EvalErrors. When the
// message carries a line number it is extracted and the prefix dropped.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatchIndex(msg); m != nil {
			line, _ := strconv.Atoi(msg[m[2]:m[3]])
			rest := msg[:m[0]] + msg[m[1]:]
			return []EvalError{{Line: line, Message: strings.TrimSpace(rest)}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
