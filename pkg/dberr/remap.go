package dberr

import (
	"cmp"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"slices"
)

// Rule maps driver errors accepted by Match onto a canonical kind.
type Rule struct {
	Kind  Kind
	Match func(error) bool
}

// Is matches errors for which errors.Is(err, target) holds.
func Is(target error) func(error) bool {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// As matches errors that have a T somewhere in their chain.
func As[T error]() func(error) bool {
	return func(err error) bool {
		var t T
		return errors.As(err, &t)
	}
}

// CodeRules builds rules from a code extractor and a code to kind table.
// Any error the extractor recognises but the table does not list is
// classified as fallback.
func CodeRules[C comparable](extract func(error) (C, bool), table map[C]Kind, fallback Kind) []Rule {
	present := make(map[Kind]bool, len(table))
	for _, k := range table {
		present[k] = true
	}
	var rules []Rule
	for _, k := range Kinds() {
		if !present[k] {
			continue
		}
		rules = append(rules, Rule{Kind: k, Match: func(err error) bool {
			code, ok := extract(err)
			return ok && table[code] == k
		}})
	}
	rules = append(rules, Rule{Kind: fallback, Match: func(err error) bool {
		_, ok := extract(err)
		return ok
	}})
	return rules
}

// StdRules classifies the errors database/sql itself returns.
func StdRules() []Rule {
	return []Rule{
		{Kind: KindOperational, Match: Is(driver.ErrBadConn)},
		{Kind: KindOperational, Match: Is(context.DeadlineExceeded)},
		{Kind: KindInterface, Match: Is(sql.ErrConnDone)},
		{Kind: KindInterface, Match: Is(sql.ErrTxDone)},
	}
}

// Remapper reclassifies errors onto the canonical hierarchy. Rules are
// tried most specific kind first, whatever order they were given in, so a
// catch-all DatabaseError rule never shadows an IntegrityError rule. Rules
// of equal depth keep their given order.
//
// A Remapper is immutable and safe for concurrent use. A nil *Remapper
// returns errors unchanged.
type Remapper struct {
	rules []Rule
}

// NewRemapper returns a Remapper for the given rules.
func NewRemapper(rules ...Rule) *Remapper {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return cmp.Compare(b.Kind.Depth(), a.Kind.Depth())
	})
	return &Remapper{rules: sorted}
}

// With returns a new Remapper with additional rules.
func (r *Remapper) With(rules ...Rule) *Remapper {
	if r == nil {
		return NewRemapper(rules...)
	}
	return NewRemapper(append(slices.Clone(r.rules), rules...)...)
}

// Classify returns the kind of the first matching rule.
func (r *Remapper) Classify(err error) (Kind, bool) {
	if r == nil || err == nil {
		return KindUnknown, false
	}
	for _, rule := range r.rules {
		if rule.Match(err) {
			return rule.Kind, true
		}
	}
	return KindUnknown, false
}

// Wrap remaps err. A canonical error is returned as is, with diag attached
// when it carries no diagnostics yet. An error matched by a rule is wrapped
// in a new *Error holding err as its cause. Anything else is returned
// unchanged.
func (r *Remapper) Wrap(err error, diag Diagnostics) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		if e.Diag.IsZero() && !e.sentinel {
			return e.WithDiag(diag)
		}
		return e
	}
	var canonical *Error
	if errors.As(err, &canonical) {
		return err
	}
	kind, ok := r.Classify(err)
	if !ok {
		return err
	}
	return &Error{Kind: kind, Message: err.Error(), Cause: err, Diag: diag}
}

// Do runs fn and remaps the error it returns.
func (r *Remapper) Do(diag Diagnostics, fn func() error) error {
	return r.Wrap(fn(), diag)
}
