package scenarios

import "fmt"

// Constructor renders the construction-only scenario: one instance built
// through the selected constructor and one through default construction,
// covering constructor and destructor bodies without touching any method.
// The default-construction line may fail to compile for types without a
// default constructor; that failure surfaces as a recorded compile failure.
func Constructor(ctx BuildContext) string {
	scope := newArgScope()

	obj := construction(scope, ctx)
	lines := append(scope.Decls(), obj)

	if ctx.Ctor != nil && len(ctx.Ctor.Params) > 0 {
		lines = append(lines, fmt.Sprintf("%s fallback;", ctx.Type.Name), "(void)fallback;")
	}

	return render(ctx, "Construct", lines)
}
