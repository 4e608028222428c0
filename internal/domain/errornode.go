package domain

// ErrorNode is the structured, pre-translation description of one error
// condition. Children are nested causes (one per invalid field, for example)
// and keep insertion order; clients rely on it for "first error" reporting.
//
// Nodes are built once per failed request and never mutated afterwards.
type ErrorNode struct {
	// Code is the stable, locale-independent identifier. Never empty.
	Code string `json:"code"`

	// Args holds named substitution values for the template bound to Code.
	Args map[string]string `json:"args,omitempty"`

	// Children are the nested causes, in order.
	Children []ErrorNode `json:"children,omitempty"`
}

// InternalErrorNode returns the generic node used whenever nothing more
// specific is known about a failure.
func InternalErrorNode() ErrorNode {
	return ErrorNode{Code: CodeInternal}
}

// Valid reports whether the node and all its descendants carry a code.
func (n ErrorNode) Valid() bool {
	if n.Code == "" {
		return false
	}

	for _, child := range n.Children {
		if !child.Valid() {
			return false
		}
	}

	return true
}
