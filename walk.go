package main

// WalkStatus tells Walk how to continue after a callback.
type WalkStatus int

const (
	// WalkContinue visits the node's children.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren skips the node's children. The exit event is still sent.
	WalkSkipChildren
	// WalkStop ends the walk.
	WalkStop
)

// Walker is called twice per node: with entering set before the children are
// visited and with entering unset after.
type Walker func(n *SyntaxNode, entering bool) (WalkStatus, error)

// Walk traverses the tree depth-first, pre-order.
func Walk(n *SyntaxNode, fn Walker) error {
	_, err := walk(n, fn)
	return err
}

func walk(n *SyntaxNode, fn Walker) (WalkStatus, error) {
	if n == nil {
		return WalkContinue, nil
	}
	status, err := fn(n, true)
	if err != nil || status == WalkStop {
		return WalkStop, err
	}
	if status != WalkSkipChildren {
		for _, child := range n.Children {
			if s, err := walk(child, fn); err != nil || s == WalkStop {
				return WalkStop, err
			}
		}
	}
	status, err = fn(n, false)
	if err != nil || status == WalkStop {
		return WalkStop, err
	}
	return WalkContinue, nil
}
