package scenarios

// Smoke renders the basic-usage scenario: construct, call once, assert per
// the return-type strategy.
func Smoke(ctx BuildContext) string {
	scope := newArgScope()

	var body []string
	if !ctx.Method.IsStatic {
		body = append(body, construction(scope, ctx))
	}

	args := argumentList(scope, ctx.Method.Params)
	body = append(body, callLines(ctx, args)...)

	lines := append(scope.Decls(), body...)

	return render(ctx, "BasicUsage", lines)
}
