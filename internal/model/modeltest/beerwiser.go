// Package modeltest provides reference cases shared by tests.
package modeltest

import "github.com/MikeSquared-Agency/Tradeoff/internal/model"

// Beerwiser returns a fresh copy of the brewery reference case: two
// investment levers, three scenarios and one key output per theme.
func Beerwiser() *model.Case {
	return &model.Case{
		Name: "Beerwiser",
		KeyOutputs: []model.KeyOutput{
			{Name: "Accidents reduction", Theme: "People", Linear: true, Automatic: true, Weight: 2},
			{Name: "Water use reduction", Theme: "Planet", Unit: "hl/year", Linear: true, Automatic: true, Weight: 1},
			{Name: "Production cost reduction", Theme: "Profit", Linear: false, Automatic: true, Weight: 3},
		},
		Themes: []model.Theme{
			{Name: "Planet", Weight: 1},
			{Name: "People", Weight: 2},
			{Name: "Profit", Weight: 3},
		},
		FixedInputs: []model.FixedInput{
			{Name: "# employees", Value: 500},
			{Name: "Current # accidents", Value: 51},
			{Name: "Current production cost", Value: 7500000},
			{Name: "Current water use", Value: 15000000},
			{Name: "Water unit cost", Value: 0.05},
			{Name: "AR_me", Value: 0.48},
			{Name: "AR_acc", Value: 0.95},
			{Name: "AR_pos", Value: 0.9},
			{Name: "AR_sp", Value: 300000},
			{Name: "WURWE_me", Value: 0.5},
			{Name: "WURWE_acc", Value: 1.0},
			{Name: "WURWE_pos", Value: 1.0},
			{Name: "WURWE_sp", Value: 275000},
		},
		InternalInputs: []string{"Invest in training of employees", "Invest in water recycling"},
		ExternalInputs: []string{"Cost of accident", "Effectiveness water recycling"},
		Options: []model.Option{
			{Name: "Equal spread", Values: []float64{150000, 150000}},
			{Name: "Focus on training", Values: []float64{250000, 50000}},
			{Name: "Focus on water recycling", Values: []float64{50000, 250000}},
		},
		Scenarios: []model.Scenario{
			{Name: "Base case", Values: []float64{15000, 0.98}, Weight: 2},
			{Name: "Optimistic", Values: []float64{12000, 1.00}, Weight: 1},
			{Name: "Pessimistic", Values: []float64{20000, 0.90}, Weight: 3},
		},
		Dependencies: []model.Dependency{
			{Destination: "AR_1", Argument1: "Invest in training of employees", Argument2: "AR_sp", Operator: "/"},
			{Destination: "WURWE_1", Argument1: "Invest in water recycling", Argument2: "WURWE_sp", Operator: "/"},
			{Destination: "Cost of training per employee", Argument1: "Invest in training of employees", Argument2: "# employees", Operator: "/"},
			{Destination: "AR_2", Argument1: "AR_1", Argument2: "1", Operator: "min"},
			{Destination: "WURWE_2", Argument1: "WURWE_1", Argument2: "1", Operator: "min"},
			{Destination: "AR_3", Argument1: "AR_2", Argument2: "AR_acc", Operator: "*"},
			{Destination: "WURWE_3", Argument1: "WURWE_2", Argument2: "WURWE_acc", Operator: "*"},
			{Destination: "AR_4", Argument1: "AR_3", Argument2: "AR_pos", Operator: "*"},
			{Destination: "WURWE_4", Argument1: "WURWE_3", Argument2: "WURWE_pos", Operator: "*"},
			{Destination: "Accidents reduction %", Argument1: "AR_4", Argument2: "AR_me", Operator: "*"},
			{Destination: "Water use reduction % when effective", Argument1: "WURWE_4", Argument2: "WURWE_me", Operator: "*"},
			{Destination: "Water use reduction %", Argument1: "Water use reduction % when effective", Argument2: "Effectiveness water recycling", Operator: "*"},
			{Destination: "Accidents reduction", Argument1: "Current # accidents", Argument2: "Accidents reduction %", Operator: "*"},
			{Destination: "Water use reduction", Argument1: "Water use reduction %", Argument2: "Current water use", Operator: "*"},
			{Destination: "Production cost reduction $", Argument1: "Accidents reduction", Argument2: "Cost of accident", Operator: "*"},
			{Destination: "New # accidents", Argument1: "Current # accidents", Argument2: "Accidents reduction", Operator: "-"},
			{Destination: "Production cost reduction $", Argument1: "Water use reduction", Argument2: "Water unit cost", Operator: "*"},
			{Destination: "New water use", Argument1: "Current water use", Argument2: "Water use reduction", Operator: "-"},
			{Destination: "Production cost reduction", Argument1: "Production cost reduction $", Argument2: "Current production cost", Operator: "/"},
		},
	}
}
