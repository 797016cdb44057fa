package navigation

import "fmt"

// DecisionKind tags a [Decision].
type DecisionKind uint8

const (
	// Allow lets the transition proceed to its target.
	Allow DecisionKind = iota + 1
	// Redirect replaces the target with Decision.Path.
	Redirect
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("DecisionKind(%d)", uint8(k))
	}
}

// Decision is the guard's verdict for one navigation attempt.
type Decision struct {
	Kind DecisionKind
	// Path is the target for Allow and the replacement target for Redirect.
	Path string
	// Reason is the session state that produced the decision.
	Reason State
}

// AllowTo returns an Allow decision for path.
func AllowTo(path string, reason State) Decision {
	return Decision{Kind: Allow, Path: path, Reason: reason}
}

// RedirectTo returns a Redirect decision to path.
func RedirectTo(path string, reason State) Decision {
	return Decision{Kind: Redirect, Path: path, Reason: reason}
}

// Allowed reports whether d lets the transition through.
func (d Decision) Allowed() bool {
	return d.Kind == Allow
}

func (d Decision) String() string {
	return d.Kind.String() + " " + d.Path
}
