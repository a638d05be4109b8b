package model

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural consistency of a case. It does not order
// or evaluate dependencies.
func (c *Case) Validate() error {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.KeyOutputs) == 0 {
		addf("no key outputs")
	}
	if len(c.Options) == 0 {
		addf("no decision makers options")
	}
	if len(c.Scenarios) == 0 {
		addf("no scenarios")
	}

	checkUnique("key output", c.KeyOutputNames(), addf)
	checkUnique("internal variable input", c.InternalInputs, addf)
	checkUnique("external variable input", c.ExternalInputs, addf)

	themes := make(map[string]bool, len(c.Themes))
	for _, t := range c.Themes {
		if themes[t.Name] {
			addf("duplicate theme %q", t.Name)
		}
		themes[t.Name] = true
		if t.Weight < 0 {
			addf("theme %q has negative weight %v", t.Name, t.Weight)
		}
	}
	for _, ko := range c.KeyOutputs {
		if ko.Name == Sentinel {
			addf("key output name cannot be empty")
		}
		if !themes[ko.Theme] {
			addf("key output %q references unknown theme %q", ko.Name, ko.Theme)
		}
		if ko.Weight < 0 {
			addf("key output %q has negative weight %v", ko.Name, ko.Weight)
		}
	}

	optionNames := make([]string, len(c.Options))
	for i, o := range c.Options {
		optionNames[i] = o.Name
		if len(o.Values) != len(c.InternalInputs) {
			addf("option %q has %d values, expected %d", o.Name, len(o.Values), len(c.InternalInputs))
		}
	}
	checkUnique("decision makers option", optionNames, addf)

	scenarioNames := make([]string, len(c.Scenarios))
	for i, s := range c.Scenarios {
		scenarioNames[i] = s.Name
		if len(s.Values) != len(c.ExternalInputs) {
			addf("scenario %q has %d values, expected %d", s.Name, len(s.Values), len(c.ExternalInputs))
		}
		if s.Weight < 0 {
			addf("scenario %q has negative weight %v", s.Name, s.Weight)
		}
	}
	checkUnique("scenario", scenarioNames, addf)

	for i, d := range c.Dependencies {
		if d.Destination == Sentinel {
			addf("dependency %d has no destination", i)
		}
		if d.Operator == OperatorSqueeze && d.Squeeze == nil {
			addf("dependency %d (%s) uses %q without squeeze parameters", i, d.Destination, OperatorSqueeze)
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid case: " + strings.Join(problems, "; "))
	}
	return nil
}

func checkUnique(kind string, names []string, addf func(string, ...interface{})) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			addf("duplicate %s %q", kind, n)
		}
		seen[n] = true
	}
}
