package evaluate

import (
	"fmt"

	"github.com/MikeSquared-Agency/Tradeoff/internal/hierarchy"
	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// operand is either a slot reference or, when slot < 0, a literal.
type operand struct {
	slot  int
	value float64
}

type instruction struct {
	op      Operator
	dest    int
	x, y    operand
	squeeze *model.Squeeze
}

type constant struct {
	slot  int
	value float64
}

// Program is a plan compiled against one case: every variable name is
// resolved to a slot in a flat environment once, so running a pair does no
// name lookups.
type Program struct {
	slots        map[string]int
	keyOutputs   []string
	koSlots      []int
	levers       []int
	uncertainty  []int
	constants    []constant
	instructions []instruction
}

// Compile resolves the names of a case and its ordered plan to slots.
// Names that are read but never written or supplied get a slot holding 0.
func Compile(c *model.Case, plan *hierarchy.Plan) (*Program, error) {
	p := &Program{
		slots:      make(map[string]int),
		keyOutputs: c.KeyOutputNames(),
	}
	for _, name := range p.keyOutputs {
		p.koSlots = append(p.koSlots, p.slot(name))
	}
	for _, name := range c.InternalInputs {
		p.levers = append(p.levers, p.slot(name))
	}
	for _, name := range c.ExternalInputs {
		p.uncertainty = append(p.uncertainty, p.slot(name))
	}
	for _, f := range c.FixedInputs {
		p.constants = append(p.constants, constant{slot: p.slot(f.Name), value: f.Value})
	}
	p.constants = append(p.constants, constant{slot: p.slot(model.Sentinel), value: 1})

	for _, s := range plan.Statements {
		op, err := ParseOperator(s.Operator)
		if err != nil {
			return nil, &EvaluationError{Operator: s.Operator, Destination: s.Destination}
		}
		in := instruction{
			op:   op,
			dest: p.slot(s.Destination),
			x:    p.operand(s.Argument1),
			y:    p.operand(s.Argument2),
		}
		if op == OpSqueeze {
			if s.Squeeze == nil {
				return nil, fmt.Errorf("dependency %q: operator %s without squeeze parameters", s.Destination, s.Operator)
			}
			sq := *s.Squeeze
			in.squeeze = &sq
			if s.Argument2 == model.Sentinel {
				in.y = in.x
			}
		}
		p.instructions = append(p.instructions, in)
	}
	return p, nil
}

func (p *Program) slot(name string) int {
	if s, ok := p.slots[name]; ok {
		return s
	}
	s := len(p.slots)
	p.slots[name] = s
	return s
}

func (p *Program) operand(arg string) operand {
	if v, ok := model.Literal(arg); ok {
		return operand{slot: -1, value: v}
	}
	return operand{slot: p.slot(arg)}
}

// KeyOutputs returns the key output names in the order Run reports them.
func (p *Program) KeyOutputs() []string {
	return p.keyOutputs
}

// Run executes the program for one lever vector and one uncertainty vector
// and returns the key output values in declared order.
func (p *Program) Run(levers, uncertainties []float64) ([]float64, error) {
	if len(levers) != len(p.levers) {
		return nil, fmt.Errorf("got %d lever values, expected %d", len(levers), len(p.levers))
	}
	if len(uncertainties) != len(p.uncertainty) {
		return nil, fmt.Errorf("got %d uncertainty values, expected %d", len(uncertainties), len(p.uncertainty))
	}

	env := make([]float64, len(p.slots))
	for i, s := range p.levers {
		env[s] = levers[i]
	}
	for i, s := range p.uncertainty {
		env[s] = uncertainties[i]
	}
	for _, c := range p.constants {
		env[c.slot] = c.value
	}

	for _, in := range p.instructions {
		x, y := in.x.value, in.y.value
		if in.x.slot >= 0 {
			x = env[in.x.slot]
		}
		if in.y.slot >= 0 {
			y = env[in.y.slot]
		}
		env[in.dest] += in.op.apply(x, y, in.squeeze)
	}

	out := make([]float64, len(p.koSlots))
	for i, s := range p.koSlots {
		out[i] = env[s]
	}
	return out, nil
}

// Evaluate is Run projected onto a name-keyed map.
func (p *Program) Evaluate(levers, uncertainties []float64) (map[string]float64, error) {
	values, err := p.Run(levers, uncertainties)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(values))
	for i, name := range p.keyOutputs {
		out[name] = values[i]
	}
	return out, nil
}
