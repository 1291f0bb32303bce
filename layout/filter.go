package layout

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// layoutEnv maps a layout onto the variables a predicate can see.
func layoutEnv(l Layout) map[string]any {
	return map[string]any{
		"ncores": l.Used,
		"atm":    l.Atm.Cores(),
		"atm_nx": l.Atm.Nx,
		"atm_ny": l.Atm.Ny,
		"mom":    l.Mom.Cores(),
		"mom_nx": l.Mom.Nx,
		"mom_ny": l.Mom.Ny,
		"ice":    l.Ice,
	}
}

// Filter returns the layouts satisfying the predicate expression. The
// predicate sees ncores, atm, atm_nx, atm_ny, mom, mom_nx, mom_ny and
// ice as integer variables and must evaluate to a boolean.
func Filter(layouts []Layout, predicate string) ([]Layout, error) {
	program, err := expr.Compile(predicate, expr.Env(layoutEnv(Layout{})), expr.AsBool())
	if err != nil {
		return nil, ErrPredicate.Wrap(err).With(slog.String("predicate", predicate))
	}

	var keep []Layout

	for _, l := range layouts {
		result, err := vm.Run(program, layoutEnv(l))
		if err != nil {
			return nil, ErrPredicate.Wrap(err).With(slog.String("predicate", predicate))
		}

		ok, isBool := result.(bool)
		if !isBool {
			return nil, ErrPredicate.With(slog.String("predicate", predicate))
		}

		if ok {
			keep = append(keep, l)
		}
	}

	return keep, nil
}
