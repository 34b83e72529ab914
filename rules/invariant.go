package rules

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	fhirview "github.com/reoring/fhirview"
	"github.com/reoring/fhirview/view"
)

// Invariant evaluates a boolean expr-lang expression against the visited
// object. Member names are variables bound to their JSON values (objects as
// maps, arrays as slices, numbers as float64); absent members are nil:
//
//	rules.For("FamilyMemberHistory",
//		rules.Invariant("fhs-1", `ageAge == nil || ageRange == nil`))
//
// A false result is a rule issue at the object's path with Rule set to key.
// Compile and evaluation errors are reported the same way with Cause set.
func Invariant(key, expression string) view.Rule {
	prg, cerr := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	return func(_ context.Context, v view.View) fhirview.Issues {
		if cerr != nil {
			return fhirview.Issues{invariantIssue(v, key, expression, cerr)}
		}
		ok, err := evalInvariant(prg, v)
		if err != nil {
			return fhirview.Issues{invariantIssue(v, key, expression, err)}
		}
		if !ok {
			return fhirview.Issues{invariantIssue(v, key, expression, nil)}
		}
		return nil
	}
}

func evalInvariant(prg *vm.Program, v view.View) (bool, error) {
	env, _ := plain(v.Node().ToAny()).(map[string]any)
	if env == nil {
		env = map[string]any{}
	}
	out, err := expr.Run(prg, env)
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}

func invariantIssue(v view.View, key, expression string, cause error) fhirview.Issue {
	iss := fhirview.NewIssue(v.Path(), fhirview.CodeRule, map[string]string{"rule": key})
	iss.Rule = key
	iss.Hint = expression
	iss.Cause = cause
	return iss
}
