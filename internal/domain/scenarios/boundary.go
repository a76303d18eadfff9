package scenarios

import (
	m "covforge.dev/pkg/covforge/internal/model"
)

// boundaryTarget locates the first parameter whose base type is a known
// struct-like aggregate with public numeric fields. The returned index is -1
// when no parameter qualifies.
func boundaryTarget(ctx BuildContext) (int, []m.FieldRecord) {
	for i, param := range ctx.Method.Params {
		rec, ok := ctx.Types[m.BaseType(param.Type)]
		if !ok {
			continue
		}

		if fields := rec.PublicNumericFields(); len(fields) > 0 {
			return i, fields
		}
	}

	return -1, nil
}

// HasBoundaryParam reports whether the method takes a struct-like parameter
// with public numeric fields, making it eligible for a boundary scenario.
func HasBoundaryParam(method m.MethodRecord, types map[string]m.TypeRecord) bool {
	idx, _ := boundaryTarget(BuildContext{Method: method, Types: types})

	return idx >= 0
}

// fieldValue picks the boundary expression for one numeric field.
func fieldValue(field m.FieldRecord, pick func(high, low, zero string) string) string {
	if m.IsFloatingType(field.Type) {
		return pick("1e6", "-1e6", "0.0")
	}

	return pick("1000000", "-1000000", "0")
}

// Boundary renders the extreme-values scenario: a struct-like parameter is
// declared as a named local, its numeric fields are driven through high,
// low and zero values, and the method is invoked once per variant.
func Boundary(ctx BuildContext) string {
	idx, fields := boundaryTarget(ctx)
	if idx < 0 {
		// No aggregate parameter to vary; fall back to the smoke shape.
		return Smoke(ctx)
	}

	scope := newArgScope()

	var body []string
	if !ctx.Method.IsStatic {
		body = append(body, construction(scope, ctx))
	}

	args := make([]string, len(ctx.Method.Params))
	for i, param := range ctx.Method.Params {
		if i == idx {
			args[i] = scope.declare(param, m.BaseType(param.Type))

			continue
		}

		args[i] = argumentFor(scope, param)
	}

	local := args[idx]
	call := invocation(ctx, joinArgs(args)) + ";"

	variants := []func(high, low, zero string) string{
		func(high, _, _ string) string { return high },
		func(_, low, _ string) string { return low },
		func(_, _, zero string) string { return zero },
	}

	for _, pick := range variants {
		for _, field := range fields {
			body = append(body, local+"."+field.Name+" = "+fieldValue(field, pick)+";")
		}

		body = append(body, call)
	}

	lines := append(scope.Decls(), body...)

	return render(ctx, "BoundaryValues", lines)
}
