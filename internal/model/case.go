package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel is the reserved variable name that always evaluates to 1. It
// stands in for an omitted second argument.
const Sentinel = ""

// Operator names accepted in dependency statements.
const (
	OperatorAdd          = "+"
	OperatorSub          = "-"
	OperatorMul          = "*"
	OperatorDiv          = "/"
	OperatorNegMul       = "-*"
	OperatorNegDiv       = "-/"
	OperatorLess         = "<"
	OperatorGreater      = ">"
	OperatorLessEqual    = "<="
	OperatorGreaterEqual = ">="
	OperatorMin          = "min"
	OperatorMax          = "max"
	OperatorSqueeze      = "squeezed *"
)

// Weight fields that may be modified after a case is built.
const (
	FieldKeyOutputWeight = "key_output_weight"
	FieldThemeWeight     = "theme_weight"
	FieldScenarioWeight  = "scenario_weight"
)

type KeyOutput struct {
	Name             string   `json:"name" yaml:"name"`
	Theme            string   `json:"theme" yaml:"theme"`
	Unit             string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Monetary         bool     `json:"monetary" yaml:"monetary"`
	SmallerTheBetter bool     `json:"smaller_the_better" yaml:"smaller_the_better"`
	Linear           bool     `json:"linear" yaml:"linear"`
	Automatic        bool     `json:"automatic" yaml:"automatic"`
	Start            *float64 `json:"start,omitempty" yaml:"start,omitempty"`
	End              *float64 `json:"end,omitempty" yaml:"end,omitempty"`
	Weight           float64  `json:"weight" yaml:"weight"`
}

type Theme struct {
	Name   string  `json:"name" yaml:"name"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type FixedInput struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// Option is a decision maker's option: one value per internal variable input.
type Option struct {
	Name   string    `json:"name" yaml:"name"`
	Values []float64 `json:"values" yaml:"values"`
}

// Budget is the sum of the option's lever values.
func (o Option) Budget() float64 {
	var total float64
	for _, v := range o.Values {
		total += v
	}
	return total
}

// Scenario assigns one value to every external variable input.
type Scenario struct {
	Name   string    `json:"name" yaml:"name"`
	Values []float64 `json:"values" yaml:"values"`
	Weight float64   `json:"weight" yaml:"weight"`
}

// Squeeze carries the extra parameters of the "squeezed *" operator.
type Squeeze struct {
	SaturationPoint      float64 `json:"saturation_point" yaml:"saturation_point"`
	Accessibility        float64 `json:"accessibility" yaml:"accessibility"`
	ProbabilityOfSuccess float64 `json:"probability_of_success" yaml:"probability_of_success"`
	MaximumEffect        float64 `json:"maximum_effect" yaml:"maximum_effect"`
}

// Dependency is a single statement: Destination += Operator(Argument1, Argument2).
// Arguments are variable names, numeric literals or empty.
type Dependency struct {
	Destination string   `json:"destination" yaml:"destination"`
	Argument1   string   `json:"argument_1" yaml:"argument_1"`
	Argument2   string   `json:"argument_2,omitempty" yaml:"argument_2,omitempty"`
	Operator    string   `json:"operator" yaml:"operator"`
	Squeeze     *Squeeze `json:"squeeze,omitempty" yaml:"squeeze,omitempty"`
}

// Case is the complete structured model of one decision.
type Case struct {
	Name           string       `json:"name" yaml:"name"`
	KeyOutputs     []KeyOutput  `json:"key_outputs" yaml:"key_outputs"`
	Themes         []Theme      `json:"themes" yaml:"themes"`
	FixedInputs    []FixedInput `json:"fixed_inputs" yaml:"fixed_inputs"`
	InternalInputs []string     `json:"internal_variable_inputs" yaml:"internal_variable_inputs"`
	ExternalInputs []string     `json:"external_variable_inputs" yaml:"external_variable_inputs"`
	Options        []Option     `json:"decision_makers_options" yaml:"decision_makers_options"`
	Scenarios      []Scenario   `json:"scenarios" yaml:"scenarios"`
	Dependencies   []Dependency `json:"dependencies" yaml:"dependencies"`
}

// KeyOutputNames returns the key output names in declared order.
func (c *Case) KeyOutputNames() []string {
	names := make([]string, len(c.KeyOutputs))
	for i, ko := range c.KeyOutputs {
		names[i] = ko.Name
	}
	return names
}

// KnownInputs returns every name whose value is supplied from outside the
// dependency graph, including the sentinel.
func (c *Case) KnownInputs() []string {
	known := make([]string, 0, len(c.FixedInputs)+len(c.InternalInputs)+len(c.ExternalInputs)+1)
	for _, f := range c.FixedInputs {
		known = append(known, f.Name)
	}
	known = append(known, c.InternalInputs...)
	known = append(known, c.ExternalInputs...)
	return append(known, Sentinel)
}

// OptionIndex returns the index of the named option, or -1.
func (c *Case) OptionIndex(name string) int {
	for i, o := range c.Options {
		if o.Name == name {
			return i
		}
	}
	return -1
}

// ScenarioIndex returns the index of the named scenario, or -1.
func (c *Case) ScenarioIndex(name string) int {
	for i, s := range c.Scenarios {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// ThemeWeight returns the weight of the named theme; unknown themes weigh 0.
func (c *Case) ThemeWeight(name string) float64 {
	for _, t := range c.Themes {
		if t.Name == name {
			return t.Weight
		}
	}
	return 0
}

// AddOption appends a new decision maker's option. The values are copied.
func (c *Case) AddOption(name string, values []float64) error {
	if c.OptionIndex(name) >= 0 {
		return fmt.Errorf("option %q already exists", name)
	}
	if len(values) != len(c.InternalInputs) {
		return fmt.Errorf("option %q has %d values, expected %d", name, len(values), len(c.InternalInputs))
	}
	c.Options = append(c.Options, Option{Name: name, Values: append([]float64(nil), values...)})
	return nil
}

// SetWeight changes one user weight. Only key output, theme and scenario
// weights can be modified.
func (c *Case) SetWeight(field, element string, value float64) (float64, error) {
	if value < 0 {
		return 0, fmt.Errorf("negative weight %v for %q", value, element)
	}
	switch field {
	case FieldKeyOutputWeight:
		for i := range c.KeyOutputs {
			if c.KeyOutputs[i].Name == element {
				old := c.KeyOutputs[i].Weight
				c.KeyOutputs[i].Weight = value
				return old, nil
			}
		}
	case FieldThemeWeight:
		for i := range c.Themes {
			if c.Themes[i].Name == element {
				old := c.Themes[i].Weight
				c.Themes[i].Weight = value
				return old, nil
			}
		}
	case FieldScenarioWeight:
		for i := range c.Scenarios {
			if c.Scenarios[i].Name == element {
				old := c.Scenarios[i].Weight
				c.Scenarios[i].Weight = value
				return old, nil
			}
		}
	default:
		return 0, fmt.Errorf("field %q cannot be modified, use one of %s, %s, %s",
			field, FieldKeyOutputWeight, FieldThemeWeight, FieldScenarioWeight)
	}
	return 0, fmt.Errorf("%s: no element named %q", field, element)
}

// Clone returns a deep copy that shares no slices or pointers with c.
func (c *Case) Clone() *Case {
	out := &Case{
		Name:           c.Name,
		KeyOutputs:     make([]KeyOutput, len(c.KeyOutputs)),
		Themes:         append([]Theme(nil), c.Themes...),
		FixedInputs:    append([]FixedInput(nil), c.FixedInputs...),
		InternalInputs: append([]string(nil), c.InternalInputs...),
		ExternalInputs: append([]string(nil), c.ExternalInputs...),
		Options:        make([]Option, len(c.Options)),
		Scenarios:      make([]Scenario, len(c.Scenarios)),
		Dependencies:   make([]Dependency, len(c.Dependencies)),
	}
	for i, ko := range c.KeyOutputs {
		ko.Start = cloneFloat(ko.Start)
		ko.End = cloneFloat(ko.End)
		out.KeyOutputs[i] = ko
	}
	for i, o := range c.Options {
		out.Options[i] = Option{Name: o.Name, Values: append([]float64(nil), o.Values...)}
	}
	for i, s := range c.Scenarios {
		out.Scenarios[i] = Scenario{Name: s.Name, Values: append([]float64(nil), s.Values...), Weight: s.Weight}
	}
	for i, d := range c.Dependencies {
		if d.Squeeze != nil {
			sq := *d.Squeeze
			d.Squeeze = &sq
		}
		out.Dependencies[i] = d
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

// Literal reports whether a dependency argument is a numeric literal and
// returns its value.
func Literal(arg string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Float64Ptr is a convenience for optional bounds.
func Float64Ptr(v float64) *float64 { return &v }
