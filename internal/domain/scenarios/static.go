package scenarios

// Static renders the scenario for a static member function: no instance is
// constructed, the call goes through the qualified name.
func Static(ctx BuildContext) string {
	scope := newArgScope()

	args := argumentList(scope, ctx.Method.Params)
	lines := append(scope.Decls(), callLines(ctx, args)...)

	return render(ctx, "StaticCall", lines)
}
