// Package metrics aggregates and compares metrics that follow a hierarchical
// naming convention.
//
// A composite metric name is a base segment followed by zero or more
// modifier segments, joined by "__":
//
//	timing__setup__ws__corner:ss_100C_1v60__stage:globalroute
//
// Here the base is "timing__setup__ws" and the modifiers, in order, are
// corner=ss_100C_1v60 and stage=globalroute.
//
// # Aggregation
//
// Aggregate rolls leaf values up to every shorter modifier prefix using the
// reducer registered for the base metric:
//
//	out := metrics.Aggregate(snapshot, nil) // nil selects metrics.Default
//
// # Comparison
//
// Compare lazily yields one ComparisonResult per metric present in both
// snapshots; NewDiff collects them, and Render and Stats summarize them:
//
//	diff, err := metrics.NewDiff(metrics.Compare(gold, current, 4, nil))
//	if err != nil {
//	    return err
//	}
//	fmt.Print(diff.Render([]string{"corner"}, metrics.VerbosityChanged))
//
// All functions are pure over their inputs. Registries and filters must not
// be mutated while a call that uses them is in progress.
package metrics
