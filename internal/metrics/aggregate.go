package metrics

import (
	"math"
)

// Reducer folds values into an accumulator. It is called as
// Reduce(accumulator, value) and returns the new accumulator.
type Reducer func(values ...Value) Value

// Aggregator is an initial accumulator paired with its reducer.
type Aggregator struct {
	Name    string
	Initial Value
	Reduce  Reducer
}

// Rule describes how a metric family rolls up across its modifiers.
type Rule struct {
	Aggregator

	// DontAggregate lists modifier keys that must never be rolled up over.
	DontAggregate []string
}

// RuleRegistry looks up the roll-up rule for a base metric name.
type RuleRegistry interface {
	Rule(base string) (Rule, bool)
}

// Rules is a RuleRegistry backed by a plain map.
type Rules map[string]Rule

// Rule implements RuleRegistry.
func (r Rules) Rule(base string) (Rule, bool) {
	rule, ok := r[base]
	return rule, ok
}

// Aggregate computes every intermediate roll-up of input and returns the
// input overlaid with them. A nil registry selects Default.
//
// For a leaf "m__a:1__b:2" the value is folded into "m" and "m__a:1"; the
// leaf itself and names without modifiers are never written to. Leaves whose
// base has no rule, whose value is not numeric, or whose modifiers include a
// key the rule refuses to aggregate over, contribute nothing. A prefix is
// only written once at least one leaf has been folded into it.
//
// Results are independent of map iteration order as long as every reducer is
// associative and commutative.
func Aggregate(input Snapshot, rules RuleRegistry) Snapshot {
	if rules == nil {
		rules = Default
	}

	aggregated := make(Snapshot)
	for name, value := range input {
		value = Normalize(value)
		if !IsNumeric(value) {
			continue
		}

		base, modifiers := ParseName(name)
		if len(modifiers) == 0 {
			continue
		}

		rule, ok := rules.Rule(base)
		if !ok || rule.Reduce == nil {
			continue
		}
		if exempt(modifiers, rule.DontAggregate) {
			continue
		}

		prefix := base
		for _, mod := range modifiers {
			current, seen := aggregated[prefix]
			if !seen {
				current = rule.Initial
			}
			aggregated[prefix] = rule.Reduce(current, value)
			prefix += Separator + mod.String()
		}
	}

	out := input.Clone()
	for name, value := range aggregated {
		out[name] = value
	}
	return out
}

func exempt(modifiers Modifiers, dontAggregate []string) bool {
	for _, key := range dontAggregate {
		if _, ok := modifiers.Get(key); ok {
			return true
		}
	}
	return false
}

// Sum adds numeric values. The result stays an int64 while every input is
// one. Non-numeric values are ignored.
func Sum(values ...Value) Value {
	var (
		isum    int64
		fsum    float64
		isFloat bool
	)
	for _, v := range values {
		switch n := Normalize(v).(type) {
		case int64:
			isum += n
		case float64:
			fsum += n
			isFloat = true
		}
	}
	if isFloat {
		return fsum + float64(isum)
	}
	return isum
}

// Min returns the smallest numeric value, or the first argument when none
// are numeric.
func Min(values ...Value) Value {
	return extremum(values, func(a, b float64) bool { return a < b })
}

// Max returns the largest numeric value, or the first argument when none
// are numeric.
func Max(values ...Value) Value {
	return extremum(values, func(a, b float64) bool { return a > b })
}

func extremum(values []Value, better func(a, b float64) bool) Value {
	var (
		best  Value
		bestF float64
		found bool
	)
	for _, v := range values {
		f, ok := toFloat(v)
		if !ok {
			continue
		}
		if !found || better(f, bestF) {
			best, bestF, found = Normalize(v), f, true
		}
	}
	if !found && len(values) > 0 {
		return values[0]
	}
	return best
}

// SumAggregator, MinAggregator and MaxAggregator are the stock roll-ups.
var (
	SumAggregator = Aggregator{Name: "sum", Initial: int64(0), Reduce: Sum}
	MinAggregator = Aggregator{Name: "min", Initial: math.Inf(1), Reduce: Min}
	MaxAggregator = Aggregator{Name: "max", Initial: math.Inf(-1), Reduce: Max}
)
