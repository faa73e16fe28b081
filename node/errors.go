package node

import "fmt"

// ContractError reports a programming error: a node of the wrong variant was
// handed to an operation which cannot process it. It is always raised with
// panic and never reported as a diagnostic.
type ContractError struct {
	Op   string
	Kind Kind
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("node contract violation: %s is not supported for %s", e.Op, e.Kind)
}

// Unexpected panics with ContractError, used by the phases when a node
// variant reaches a match which does not handle it.
func Unexpected(op string, n *Node) {
	panic(&ContractError{Op: op, Kind: n.Kind()})
}
