package core

// Owner is the capability every stepper owner must provide. The scheduler
// never orders by owner; it only asks whether the owner is still live before
// running a stepper and before accepting a registration.
//
// Owners are used as map keys, so implementations must be comparable.
// Pointer receivers are the usual choice.
type Owner interface {
	IsLive() bool
}

// Named is implemented by owners that carry a human-readable name. Events and
// log lines include the name when it is available.
type Named interface {
	Name() string
}

// OwnerName returns the owner's name if it implements Named, or "".
func OwnerName(o Owner) string {
	if n, ok := o.(Named); ok {
		return n.Name()
	}
	return ""
}
