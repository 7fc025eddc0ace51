package physical

import (
	"csvql/internal/sql"
	"csvql/internal/types"
)

// AggregateExpr is a compiled aggregate call: the function, its compiled
// argument (nil for COUNT(*)), the DISTINCT flag, and the output column
// name the planner assigned.
type AggregateExpr struct {
	Func     sql.AggregateFunc
	Arg      Expression
	Distinct bool
	Name     string
}

func (a *AggregateExpr) String() string {
	arg := "*"
	if a.Arg != nil {
		arg = a.Arg.String()
	}
	if a.Distinct {
		return a.Func.String() + "(DISTINCT " + arg + ")"
	}
	return a.Func.String() + "(" + arg + ")"
}

// newAccumulator builds the accumulator state for one aggregate within one
// group. State is sized to the aggregate kind; the seen-set exists only
// when DISTINCT was requested.
func (a *AggregateExpr) newAccumulator() accumulator {
	var acc accumulator
	switch a.Func {
	case sql.AggCount:
		acc = &countAcc{}
	case sql.AggSum:
		acc = &sumAcc{}
	case sql.AggAvg:
		acc = &avgAcc{}
	case sql.AggMin:
		acc = &minmaxAcc{min: true}
	case sql.AggMax:
		acc = &minmaxAcc{}
	}
	if a.Distinct {
		return &distinctAcc{seen: make(map[string]struct{}), inner: acc}
	}
	return acc
}

// accumulator folds one group's argument values into a single result.
// Null arguments are ignored by every kind; COUNT(*) feeds a non-null
// marker per row instead of an argument value.
type accumulator interface {
	add(v types.Value) error
	result() types.Value
}

// countAcc counts non-null values. Empty group yields 0.
type countAcc struct {
	n int64
}

func (a *countAcc) add(v types.Value) error {
	if !v.IsNull() {
		a.n++
	}
	return nil
}

func (a *countAcc) result() types.Value { return types.NewInt(a.n) }

// sumAcc adds numeric values, keeping Integer sums Integer. An empty or
// all-Null group yields Null.
type sumAcc struct {
	sum types.Value
}

func (a *sumAcc) add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	if a.sum.IsNull() {
		a.sum = v
		return nil
	}
	s, err := types.Arith("+", a.sum, v)
	if err != nil {
		return err
	}
	a.sum = s
	return nil
}

func (a *sumAcc) result() types.Value { return a.sum }

// avgAcc averages numeric values as Float. An empty or all-Null group
// yields Null.
type avgAcc struct {
	sum sumAcc
	n   int64
}

func (a *avgAcc) add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	if err := a.sum.add(v); err != nil {
		return err
	}
	a.n++
	return nil
}

func (a *avgAcc) result() types.Value {
	if a.n == 0 {
		return types.Null
	}
	total := a.sum.result()
	var f float64
	if total.Kind() == types.KindInt {
		f = float64(total.Int())
	} else {
		f = total.Float()
	}
	return types.NewFloat(f / float64(a.n))
}

// minmaxAcc tracks the extreme non-null value. Empty group yields Null.
type minmaxAcc struct {
	min  bool
	best types.Value
}

func (a *minmaxAcc) add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	if a.best.IsNull() {
		a.best = v
		return nil
	}
	c := types.Compare(v, a.best)
	if (a.min && c < 0) || (!a.min && c > 0) {
		a.best = v
	}
	return nil
}

func (a *minmaxAcc) result() types.Value { return a.best }

// distinctAcc deduplicates argument values by value equality before
// delegating to the wrapped accumulator.
type distinctAcc struct {
	seen  map[string]struct{}
	inner accumulator
}

func (a *distinctAcc) add(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	key := v.Key()
	if _, dup := a.seen[key]; dup {
		return nil
	}
	a.seen[key] = struct{}{}
	return a.inner.add(v)
}

func (a *distinctAcc) result() types.Value { return a.inner.result() }
