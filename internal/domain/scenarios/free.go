package scenarios

// FreeFunction renders the scenario for a file-scope function: no object is
// constructed, the call is unqualified, assertions follow the return-type
// strategy.
func FreeFunction(ctx BuildContext) string {
	scope := newArgScope()

	args := argumentList(scope, ctx.Method.Params)
	lines := append(scope.Decls(), callLines(ctx, args)...)

	return render(ctx, "FreeCall", lines)
}
