package metrics

import (
	"math"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// Preference is the direction in which a metric improves.
type Preference int

const (
	// NoPreference metrics are reported as changed but never as better or worse.
	NoPreference Preference = iota
	HigherIsBetter
	LowerIsBetter
)

func (p Preference) String() string {
	switch p {
	case HigherIsBetter:
		return "higher"
	case LowerIsBetter:
		return "lower"
	default:
		return "none"
	}
}

// Comparator compares the gold and new values of a single metric.
type Comparator interface {
	Compare(gold, current Value, significantFigures int, modifiers Modifiers) (ComparisonResult, error)
}

// Metric is the definition of a metric family, keyed by its base name.
type Metric struct {
	Name        string
	Description string

	// Aggregator rolls leaves up across modifiers. Nil means the family is
	// never aggregated.
	Aggregator *Aggregator

	// DontAggregate lists modifier keys that are not summable for this
	// family, e.g. "stage" for values that are snapshots of the same design.
	DontAggregate []string

	Preference Preference

	// Critical metrics are surfaced first in reports whatever their change.
	Critical bool
}

// Rule returns the roll-up rule for the metric.
func (m *Metric) Rule() (Rule, bool) {
	if m.Aggregator == nil {
		return Rule{}, false
	}
	return Rule{Aggregator: *m.Aggregator, DontAggregate: m.DontAggregate}, true
}

// Compare implements Comparator.
//
// Numeric values are rounded to significantFigures significant digits
// (half up) before the delta is taken, so changes below that precision count
// as unchanged. A significantFigures of zero or less disables rounding.
// Other values, including infinities and NaN, compare by their formatted
// text and never get a verdict.
func (m *Metric) Compare(goldValue, newValue Value, significantFigures int, modifiers Modifiers) (ComparisonResult, error) {
	goldValue, newValue = Normalize(goldValue), Normalize(newValue)
	name := JoinName(m.Name, modifiers)
	result := ComparisonResult{
		MetricName: name,
		Gold:       goldValue,
		New:        newValue,
		Critical:   m.Critical,
	}

	if !isFinite(goldValue) || !isFinite(newValue) {
		result.Before = FormatValue(goldValue)
		result.After = FormatValue(newValue)
		result.Delta = "N/A"
		result.Changed = result.Before != result.After
		return result, nil
	}

	g, err := roundedDecimal(goldValue, significantFigures)
	if err != nil {
		return ComparisonResult{}, errors.Wrapf(err, "metric %s: gold value", name)
	}
	n, err := roundedDecimal(newValue, significantFigures)
	if err != nil {
		return ComparisonResult{}, errors.Wrapf(err, "metric %s: new value", name)
	}

	delta := new(apd.Decimal)
	if _, err := exactContext.Sub(delta, n, g); err != nil {
		return ComparisonResult{}, errors.Wrapf(err, "metric %s: delta", name)
	}
	if err := roundDecimal(delta, significantFigures); err != nil {
		return ComparisonResult{}, errors.Wrapf(err, "metric %s: delta", name)
	}

	result.Before = decimalText(g)
	result.After = decimalText(n)
	result.Changed = !delta.IsZero()

	if !result.Changed {
		result.Delta = "0"
		return result, nil
	}

	result.Delta = signedText(delta)
	if !g.IsZero() {
		pct := new(apd.Decimal)
		if _, err := exactContext.Quo(pct, delta, g); err != nil {
			return ComparisonResult{}, errors.Wrapf(err, "metric %s: delta percent", name)
		}
		if _, err := exactContext.Mul(pct, pct, apd.New(100, 0)); err != nil {
			return ComparisonResult{}, errors.Wrapf(err, "metric %s: delta percent", name)
		}
		if err := roundDecimal(pct, significantFigures); err != nil {
			return ComparisonResult{}, errors.Wrapf(err, "metric %s: delta percent", name)
		}
		result.Delta += " (" + signedText(pct) + "%)"
	}

	switch {
	case m.Preference == HigherIsBetter && delta.Sign() > 0,
		m.Preference == LowerIsBetter && delta.Sign() < 0:
		result.Better = Improved
	case m.Preference != NoPreference:
		result.Better = Regressed
	}

	return result, nil
}

// isFinite reports whether v is numeric and neither infinite nor NaN.
func isFinite(v Value) bool {
	f, ok := toFloat(v)
	return ok && !math.IsInf(f, 0) && !math.IsNaN(f)
}

var exactContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

func roundedDecimal(v Value, significantFigures int) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	switch n := Normalize(v).(type) {
	case int64:
		d.SetInt64(n)
	case float64:
		if _, err := d.SetFloat64(n); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Newf("%T is not numeric", v)
	}
	if err := roundDecimal(d, significantFigures); err != nil {
		return nil, err
	}
	return d, nil
}

func roundDecimal(d *apd.Decimal, significantFigures int) error {
	if significantFigures <= 0 || d.Form != apd.Finite {
		return nil
	}
	ctx := apd.BaseContext.WithPrecision(uint32(significantFigures))
	ctx.Rounding = apd.RoundHalfUp
	_, err := ctx.Round(d, d)
	return err
}

func decimalText(d *apd.Decimal) string {
	if d.Form != apd.Finite {
		return d.String()
	}
	reduced, _ := new(apd.Decimal).Reduce(d)
	return reduced.Text('f')
}

func signedText(d *apd.Decimal) string {
	text := decimalText(d)
	if d.Sign() > 0 {
		return "+" + text
	}
	return text
}
