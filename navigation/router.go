package navigation

import (
	"sync"
)

// Transition is the outcome of one [Router.Navigate] call.
type Transition struct {
	From     string
	Target   string
	Decision Decision
	// Route is the route rendered after the decision was applied. It is the
	// zero Route when the landing path has no mapping.
	Route Route
}

// Landed returns the path the router ended on.
func (t Transition) Landed() string {
	return t.Decision.Path
}

// Router applies guard decisions and tracks the current route.
type Router struct {
	guard *Guard

	mu      sync.Mutex
	table   *Table
	current string
	hooks   []func(Transition)
}

// NewRouter creates a router starting at "/" without evaluating the guard.
func NewRouter(guard *Guard, table *Table) *Router {
	if table == nil {
		table = DefaultRoutes()
	}
	return &Router{guard: guard, table: table, current: "/"}
}

// Guard returns the router's guard.
func (r *Router) Guard() *Guard {
	return r.guard
}

// Table returns the active route table.
func (r *Router) Table() *Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table
}

// SetTable swaps the route table, e.g. after feature toggles load.
func (r *Router) SetTable(t *Table) {
	r.mu.Lock()
	r.table = t
	r.mu.Unlock()
}

// AfterEach registers a hook called after every applied transition.
func (r *Router) AfterEach(fn func(Transition)) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// Current returns the current path.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate evaluates the guard for target and applies the decision. The
// router always moves: to target on Allow, to the login path on Redirect.
// A landing path missing from the table yields [ErrRouteNotFound] alongside
// the applied transition.
func (r *Router) Navigate(target string) (Transition, error) {
	decision := r.guard.Evaluate(target)

	r.mu.Lock()
	tr := Transition{From: r.current, Target: target, Decision: decision}
	r.current = decision.Path
	table := r.table
	hooks := r.hooks
	r.mu.Unlock()

	route, err := table.Lookup(decision.Path)
	if err == nil {
		tr.Route = route
	}

	for _, fn := range hooks {
		fn(tr)
	}
	return tr, err
}
