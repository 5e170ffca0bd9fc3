// Package guard runs one guard invocation: normalize the payload, classify it
// against the rule tables, resolve a decision and write exactly one response.
// Every failure path ends in the guard's declared fallback decision.
package guard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gzhole/hookguard/internal/confusable"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/normalize"
	"github.com/gzhole/hookguard/internal/policy"
)

// Guard binds the engine to one action domain.
type Guard struct {
	Name string

	Normalize func(payload []byte) (normalize.ActionRequest, error)
	Classify  func(t *policy.Tables, req normalize.ActionRequest) policy.Classification
	Resolve   func(req normalize.ActionRequest, c policy.Classification) policy.Decision

	// Render maps a decision to the host's response document.
	Render func(d policy.Decision) any
	// PermissionKey is the response field that carries the permission.
	PermissionKey string
	// ExitCode maps a permission to the process exit code.
	ExitCode func(p policy.Permission) int

	// OnMalformed answers input that is not a structured payload.
	OnMalformed policy.Decision
	// OnFailure answers every other error, including panics.
	OnFailure policy.Decision
}

// Failure classes reported in Result.
const (
	FailureNone      = ""
	FailureMalformed = "malformed"
	FailureInternal  = "internal"
)

// Result is the outcome of one evaluation.
type Result struct {
	Request        normalize.ActionRequest
	Classification policy.Classification
	Decision       policy.Decision
	// ShortCircuit is set when the request carried nothing to classify.
	ShortCircuit bool
	// Failure names the error class that forced a fallback decision.
	Failure string
	Err     error
}

// TableSource supplies the rule tables. It is called inside the envelope so
// a broken rule file resolves to the guard's fallback like any other failure.
type TableSource func() (*policy.Tables, error)

type Engine struct {
	tables TableSource
	log    *slog.Logger
}

func NewEngine(tables TableSource, log *slog.Logger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{tables: tables, log: log}
}

// Evaluate runs normalize, classify and resolve on payload. It never panics
// and always returns a usable decision.
func (e *Engine) Evaluate(g *Guard, payload []byte) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fallback(g, FailureInternal, fmt.Errorf("panic: %v", r))
		}
	}()

	req, err := g.Normalize(payload)
	if err != nil {
		if errors.Is(err, normalize.ErrMalformed) {
			return fallback(g, FailureMalformed, err)
		}
		return fallback(g, FailureInternal, err)
	}

	if req.Empty() {
		return Result{Request: req, Decision: policy.Allow(), ShortCircuit: true}
	}

	var tables *policy.Tables
	if g.Classify != nil {
		tables, err = e.tables()
		if err != nil {
			return fallback(g, FailureInternal, fmt.Errorf("load rules: %w", err))
		}
	}

	res = Result{Request: req, Classification: policy.NewClassification()}
	if g.Classify != nil {
		res.Classification = g.Classify(tables, req)
	}
	res.Decision = g.Resolve(req, res.Classification)
	return res
}

// Run is the process-level envelope: read all of in, evaluate, write one
// response line to out and return the exit code.
func (e *Engine) Run(g *Guard, in io.Reader, out io.Writer) int {
	log := e.log.With("guard", g.Name, "eval_id", uuid.NewString())

	var res Result
	payload, err := io.ReadAll(in)
	if err != nil {
		res = fallback(g, FailureInternal, fmt.Errorf("read stdin: %w", err))
	} else {
		res = e.Evaluate(g, payload)
	}

	body, code := e.encode(g, res.Decision)

	if res.Failure != FailureNone {
		log.Warn("guard fell back",
			"failure", res.Failure,
			"error", res.Err,
			"permission", string(res.Decision.Permission),
			"exit_code", code)
	} else {
		log.Debug("guard decided",
			"kind", res.Request.Kind.String(),
			"permission", string(res.Decision.Permission),
			"short_circuit", res.ShortCircuit,
			"facts", fmt.Sprint(res.Classification.Facts),
			"evidence", fmt.Sprint(res.Classification.Evidence),
			"exit_code", code)

		if findings := confusable.Find(res.Request.Subject()); len(findings) > 0 {
			log.Warn("request contains hidden or look-alike characters",
				"kind", res.Request.Kind.String(),
				"findings", confusable.Summary(findings))
		}
	}

	if _, err := out.Write(body); err != nil {
		log.Error("write response", "error", err)
	}
	return code
}

// encode renders d completely before anything is written, so the host never
// sees a partial document. If d cannot be rendered the failure fallback is
// used instead.
func (e *Engine) encode(g *Guard, d policy.Decision) ([]byte, int) {
	body, err := render(g, d)
	if err == nil {
		return body, g.ExitCode(d.Permission)
	}
	e.log.Error("render response", "guard", g.Name, "error", err)

	body, err = render(g, g.OnFailure)
	if err != nil {
		// Render itself is broken; emit the bare permission.
		body = []byte(fmt.Sprintf("{%q:%q}\n", g.PermissionKey, g.OnFailure.Permission))
	}
	return body, g.ExitCode(g.OnFailure.Permission)
}

func render(g *Guard, d policy.Decision) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(g.Render(d)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fallback(g *Guard, failure string, err error) Result {
	d := g.OnFailure
	if failure == FailureMalformed {
		d = g.OnMalformed
	}
	return Result{Decision: d, Failure: failure, Err: err}
}
