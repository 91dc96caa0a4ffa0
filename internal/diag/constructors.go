package diag

// Typed per-code constructors so call sites cannot typo a Code string
// (spec.md §4.3.9 of SPEC_FULL.md). Each mirrors one of the error-kind
// families enumerated in spec.md §7.

func TypeMismatch(span Span, want, got string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "type-mismatch", Span: span, Args: []string{want, got}}
}

func NameNotFound(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "name-not-found", Span: span, Args: []string{name}}
}

func DuplicateDecl(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "duplicate-decl", Span: span, Args: []string{name}}
}

func Shadowing(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: "shadowing", Span: span, Args: []string{name}}
}

func OverloadNoMatch(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "overload-no-match", Span: span, Args: []string{name}}
}

func OverloadAmbiguous(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "overload-ambiguous", Span: span, Args: []string{name}}
}

func OverloadDeclConflict(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "overload-decl-conflict", Span: span, Args: []string{name}}
}

func OverloadMangleCollision(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "overload-mangle-collision", Span: span, Args: []string{name}}
}

func OverloadMixedInvalid(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "overload-mixed-invalid", Span: span, Args: []string{name}}
}

func OverloadDuplicateLabel(span Span, label string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "overload-duplicate-label", Span: span, Args: []string{label}}
}

func CAbiOverload(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "c-abi-overload", Span: span, Args: []string{name}}
}

func CAbiNamedGroup(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "c-abi-named-group", Span: span, Args: []string{name}}
}

func CAbiNotFfiSafe(span Span, typeName string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "c-abi-not-ffi-safe", Span: span, Args: []string{typeName}}
}

func CAbiGlobalNotStatic(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "c-abi-global-not-static", Span: span, Args: []string{name}}
}

func IntLiteralInvalid(span Span, text string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "int-literal-invalid", Span: span, Args: []string{text}}
}

func IntLiteralOverflow(span Span, text, target string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "int-literal-overflow", Span: span, Args: []string{text, target}}
}

func IntLiteralNeedsContext(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "int-literal-needs-context", Span: span}
}

func IntLiteralDoesNotFit(span Span, text, target string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "int-literal-does-not-fit", Span: span, Args: []string{text, target}}
}

func IntToFloat(span Span, from, to string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "int-to-float", Span: span, Args: []string{from, to}}
}

func BreakOutsideLoop(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "break-outside-loop", Span: span}
}

func ContinueOutsideLoop(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "continue-outside-loop", Span: span}
}

func MissingReturn(span Span, fnName string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "missing-return", Span: span, Args: []string{fnName}}
}

func ReturnOutsideFn(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "return-outside-fn", Span: span}
}

func WriteToImmutable(span Span, name string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "write-to-immutable", Span: span, Args: []string{name}}
}

func LhsMustBePlace(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "lhs-must-be-place", Span: span}
}

func CastMissingOperand(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "cast-missing-operand", Span: span}
}

func CastMissingTarget(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "cast-missing-target", Span: span}
}

func CastNullToNonoptional(span Span, target string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "cast-null-to-nonoptional", Span: span, Args: []string{target}}
}

func CastNotAllowed(span Span, from, to string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "cast-not-allowed", Span: span, Args: []string{from, to}}
}

func NullCoalesceRhsMismatch(span Span, elemType, rhsType string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "null-coalesce-rhs-mismatch", Span: span, Args: []string{elemType, rhsType}}
}

func BorrowRequiresPlace(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "borrow-requires-place", Span: span}
}

func BorrowMutRequiresMutable(span Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "borrow-mut-requires-mutable", Span: span}
}

func IrVerifierDominance(span Span, value string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "ir-verifier-dominance", Span: span, Args: []string{value}}
}

func IrVerifierLoopFixpoint(span Span, header string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: "ir-verifier-loop-fixpoint", Span: span, Args: []string{header}}
}

func IrVerifierEdgeArity(span Span, block string, got, want int) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     "ir-verifier-edge-arity",
		Span:     span,
		Args:     []string{block, itoa(got), itoa(want)},
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
