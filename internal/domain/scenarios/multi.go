package scenarios

// multiInvocationCalls is how many times the target method is exercised in
// one multi-invocation scenario.
const multiInvocationCalls = 3

// MultiInvocation renders the repeated-call scenario: the method is invoked
// several times on the same instance so state carried between calls gets
// exercised.
func MultiInvocation(ctx BuildContext) string {
	scope := newArgScope()

	var body []string
	if !ctx.Method.IsStatic {
		body = append(body, construction(scope, ctx))
	}

	args := argumentList(scope, ctx.Method.Params)
	for i := 0; i < multiInvocationCalls; i++ {
		body = append(body, invocation(ctx, args)+";")
	}

	lines := append(scope.Decls(), body...)

	return render(ctx, "MultipleInvocations", lines)
}
