package pipeline

import "fmt"

// Problem describes a domain failure produced by a middleware or handler.
// It is an outcome, not an error: the pipeline treats failure results as
// the normal short-circuit path.
type Problem struct {
	Code   string
	Detail string
}

func (p *Problem) String() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", p.Code, p.Detail)
}

// Result is the tagged outcome of a dispatch: success optionally carrying a
// value and a cache-hit flag, or failure carrying a Problem. The pipeline
// itself never fabricates a Result; only middleware and the final delegate do.
type Result struct {
	Value    any
	CacheHit bool
	Problem  *Problem
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Problem == nil
}

// Success creates a success result carrying a value.
func Success(value any) Result {
	return Result{Value: value}
}

// Fail creates a failure result.
func Fail(code, detail string) Result {
	return Result{Problem: &Problem{Code: code, Detail: detail}}
}
