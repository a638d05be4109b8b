// Package hierarchy orders dependency statements so that every statement
// runs after the statements producing its arguments.
package hierarchy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// ErrUnresolvable is matched by every OrderingError.
var ErrUnresolvable = errors.New("unresolvable dependencies")

// OrderingError names the destinations of statements that could not be
// placed, either because they sit on a cycle or depend on one.
type OrderingError struct {
	Destinations []string
}

func (e *OrderingError) Error() string {
	quoted := make([]string, len(e.Destinations))
	for i, d := range e.Destinations {
		quoted[i] = fmt.Sprintf("%q", d)
	}
	return fmt.Sprintf("ordering dependencies: cyclic or unresolved statements for %s", strings.Join(quoted, ", "))
}

func (e *OrderingError) Unwrap() error { return ErrUnresolvable }

// Statement is a dependency annotated with its hierarchy level and the row
// it had in the input.
type Statement struct {
	model.Dependency
	Level int `json:"level"`
	Row   int `json:"row"`
}

// Plan is an immutable evaluation order.
type Plan struct {
	Statements []Statement `json:"statements"`
}

// Levels returns the hierarchy level of each statement in plan order.
func (p *Plan) Levels() []int {
	out := make([]int, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = s.Level
	}
	return out
}

// Destinations returns the destination of each statement in plan order.
func (p *Plan) Destinations() []string {
	out := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = s.Destination
	}
	return out
}

// Dependencies returns the ordered statements without annotations.
func (p *Plan) Dependencies() []model.Dependency {
	out := make([]model.Dependency, len(p.Statements))
	for i, s := range p.Statements {
		out[i] = s.Dependency
	}
	return out
}

// Order assigns hierarchy levels and returns the statements sorted by
// (level, input row).
//
// Statements whose arguments are all literals or knowns get level 1. Every
// other statement gets one more than the highest level among the producers
// of its arguments, and at least 2. An argument equal to the statement's own
// destination is an accumulator: it waits for the other producers of that
// destination, counting accumulating producers only on earlier rows.
func Order(deps []model.Dependency, knowns []string) (*Plan, error) {
	g := newGraph(deps, knowns)

	levels, ok := g.resolve()
	if !ok {
		return nil, g.unresolved(levels)
	}

	stmts := make([]Statement, len(deps))
	for i, d := range deps {
		stmts[i] = Statement{Dependency: d, Level: levels[i], Row: i}
	}
	sort.SliceStable(stmts, func(a, b int) bool {
		if stmts[a].Level != stmts[b].Level {
			return stmts[a].Level < stmts[b].Level
		}
		return stmts[a].Row < stmts[b].Row
	})
	return &Plan{Statements: stmts}, nil
}
