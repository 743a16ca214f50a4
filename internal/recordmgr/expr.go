package recordmgr

// Expr is the boundary to the expression evaluator, which is out of scope
// for this package: the query parser and expression AST are defined
// elsewhere and handed to StartScan as an opaque collaborator. Eval is
// invoked once per candidate row during a scan and must produce a BOOL
// Value.
type Expr interface {
	Eval(rec *Record, schema *Schema) (Value, error)
}
