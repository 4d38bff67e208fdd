package testutil

// Owner is a core.Owner whose liveness can be switched off, standing in for
// an agent torn down by a scene/object-lifecycle collaborator.
type Owner struct {
	name string
	dead bool
}

// NewOwner creates a live owner.
func NewOwner(name string) *Owner { return &Owner{name: name} }

// Name returns the owner name.
func (o *Owner) Name() string { return o.name }

// IsLive reports whether Kill has not been called yet.
func (o *Owner) IsLive() bool { return !o.dead }

// Kill marks the owner as torn down.
func (o *Owner) Kill() { o.dead = true }
