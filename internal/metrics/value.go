package metrics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Value is a metric value. Snapshots produced by this module only hold
// int64, float64, string, bool or nil.
type Value = any

// Snapshot maps composite metric names to values.
type Snapshot map[string]Value

// Clone returns a shallow copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Normalize converts the numeric kinds produced by decoders (int, int32,
// uint, float32, ...) to int64 or float64 so values compare by type.
func Normalize(v Value) Value {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// IsNumeric reports whether v is a Go integer or float of any width.
func IsNumeric(v Value) bool {
	switch Normalize(v).(type) {
	case int64, float64:
		return true
	}
	return false
}

func toFloat(v Value) (float64, bool) {
	switch n := Normalize(v).(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Coerce converts gold to the dynamic type of target. Both values are
// normalized first, so an int gold against an int64 target is not a
// mismatch. Values of the same type, and nil on either side, are returned
// normalized but otherwise untouched.
func Coerce(gold, target Value) (Value, error) {
	gold, target = Normalize(gold), Normalize(target)
	if gold == nil || target == nil {
		return gold, nil
	}
	if fmt.Sprintf("%T", gold) == fmt.Sprintf("%T", target) {
		return gold, nil
	}

	switch target.(type) {
	case int64:
		switch g := gold.(type) {
		case float64:
			if math.IsNaN(g) || math.IsInf(g, 0) {
				return nil, errors.Newf("cannot convert %v to an integer", g)
			}
			return int64(g), nil
		case bool:
			if g {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			i, err := strconv.ParseInt(g, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot convert %q to an integer", g)
			}
			return i, nil
		}
	case float64:
		switch g := gold.(type) {
		case int64:
			return float64(g), nil
		case bool:
			if g {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			f, err := strconv.ParseFloat(g, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot convert %q to a float", g)
			}
			return f, nil
		}
	case string:
		return FormatValue(gold), nil
	case bool:
		switch g := gold.(type) {
		case int64:
			return g != 0, nil
		case float64:
			return g != 0, nil
		case string:
			b, err := strconv.ParseBool(g)
			if err != nil {
				return nil, errors.Wrapf(err, "cannot convert %q to a boolean", g)
			}
			return b, nil
		}
	}

	return nil, errors.Newf("cannot convert %T to %T", gold, target)
}

// FormatValue renders a value without rounding.
func FormatValue(v Value) string {
	switch n := Normalize(v).(type) {
	case nil:
		return "N/A"
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	default:
		return fmt.Sprint(n)
	}
}
