package evaluate

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Tradeoff/internal/model"
)

// Operator is the closed set of binary operations a dependency can apply.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpNegMul
	OpNegDiv
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpMin
	OpMax
	OpSqueeze
)

var operatorNames = map[string]Operator{
	model.OperatorAdd:          OpAdd,
	model.OperatorSub:          OpSub,
	model.OperatorMul:          OpMul,
	model.OperatorDiv:          OpDiv,
	model.OperatorNegMul:       OpNegMul,
	model.OperatorNegDiv:       OpNegDiv,
	model.OperatorLess:         OpLess,
	model.OperatorGreater:      OpGreater,
	model.OperatorLessEqual:    OpLessEqual,
	model.OperatorGreaterEqual: OpGreaterEqual,
	model.OperatorMin:          OpMin,
	model.OperatorMax:          OpMax,
	model.OperatorSqueeze:      OpSqueeze,
}

// EvaluationError reports an operator that is not part of the table.
type EvaluationError struct {
	Operator    string
	Destination string
}

func (e *EvaluationError) Error() string {
	if e.Destination != "" {
		return fmt.Sprintf("evaluation error: operator %s not available (destination %q)", e.Operator, e.Destination)
	}
	return fmt.Sprintf("evaluation error: operator %s not available", e.Operator)
}

// ParseOperator maps an operator string to its Operator.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorNames[s]
	if !ok {
		return 0, &EvaluationError{Operator: s}
	}
	return op, nil
}

func (o Operator) String() string {
	for name, op := range operatorNames {
		if op == o {
			return name
		}
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// apply computes o(x, y). sq is only read by OpSqueeze.
func (o Operator) apply(x, y float64, sq *model.Squeeze) float64 {
	switch o {
	case OpAdd:
		return x + y
	case OpSub:
		return x - y
	case OpMul:
		return x * y
	case OpDiv:
		if y == 0 {
			return 0
		}
		return x / y
	case OpNegMul:
		return -x * y
	case OpNegDiv:
		if y == 0 {
			return 0
		}
		return -x / y
	case OpLess:
		return indicator(x < y)
	case OpGreater:
		return indicator(x > y)
	case OpLessEqual:
		return indicator(x <= y)
	case OpGreaterEqual:
		return indicator(x >= y)
	case OpMin:
		return math.Min(x, y)
	case OpMax:
		return math.Max(x, y)
	case OpSqueeze:
		return Squeeze(math.Min(x, y), *sq)
	}
	return 0
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Squeeze models the diminishing effect of an investment x:
// min(1, x/saturation) * accessibility * probability of success * maximum effect.
// The ratio follows the division rule, so a zero saturation point gives 0.
func Squeeze(x float64, p model.Squeeze) float64 {
	ratio := 0.0
	if p.SaturationPoint != 0 {
		ratio = math.Min(1, x/p.SaturationPoint)
	}
	return ratio * p.Accessibility * p.ProbabilityOfSuccess * p.MaximumEffect
}

// Apply evaluates a single operator by name. The squeeze operator needs
// its parameters and is rejected here; use Squeeze instead.
func Apply(op string, x, y float64) (float64, error) {
	o, err := ParseOperator(op)
	if err != nil {
		return 0, err
	}
	if o == OpSqueeze {
		return 0, fmt.Errorf("operator %s requires squeeze parameters", op)
	}
	return o.apply(x, y, nil), nil
}
