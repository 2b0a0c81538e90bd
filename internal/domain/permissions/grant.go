package permissions

// Grant represents a collection of permissions granted to a plugin.
// This acts as a domain entity for managing approved permissions.
type Grant []Permission

// NewGrant creates a new empty Grant.
func NewGrant(perms ...Permission) Grant {
	g := make(Grant, 0, len(perms))
	for _, p := range perms {
		g.Add(p)
	}
	return g
}

// Add adds a permission to the grant if it's not already present.
func (g *Grant) Add(p Permission) {
	for _, existing := range *g {
		if existing == p {
			return // Already exists
		}
	}
	*g = append(*g, p)
}

// Contains checks if the grant contains a specific permission.
func (g Grant) Contains(p Permission) bool {
	for _, existing := range g {
		if existing == p {
			return true
		}
	}
	return false
}

// Remove removes a permission from the grant.
func (g *Grant) Remove(p Permission) {
	for i, existing := range *g {
		if existing == p {
			*g = append((*g)[:i], (*g)[i+1:]...)
			return
		}
	}
}

// Strings returns the wire representation of every permission in the grant.
func (g Grant) Strings() []string {
	out := make([]string, len(g))
	for i, p := range g {
		out[i] = string(p)
	}
	return out
}
