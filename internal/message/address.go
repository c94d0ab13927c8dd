package message

import "fmt"

// Address identifies a message's route as two ordered hop chains.
//
// Each chain runs from the endpoint inward: index 0 is the endpoint
// identifier (the process-level inbox a transport delivers to), and any
// further hops name children within nested or compound instrument
// hierarchies. A hop name uniquely identifies a child within its parent's
// namespace.
type Address struct {
	Sender []string `json:"sender"`
	Target []string `json:"target"`
}

// BuildAddress constructs an Address from sender and target hop chains.
//
// Returns ErrInvalidAddress if either chain is empty. The chains are
// copied, so callers may reuse their slices.
func BuildAddress(sender, target []string) (Address, error) {
	if len(sender) == 0 || len(target) == 0 {
		return Address{}, fmt.Errorf("%w: sender=%d hops, target=%d hops", ErrInvalidAddress, len(sender), len(target))
	}
	a := Address{
		Sender: make([]string, len(sender)),
		Target: make([]string, len(target)),
	}
	copy(a.Sender, sender)
	copy(a.Target, target)
	return a, nil
}

// Reverse returns a new Address with the sender and target chains swapped.
// A Reply's address is the reversed address of its Request.
func (a Address) Reverse() Address {
	rev := Address{
		Sender: make([]string, len(a.Target)),
		Target: make([]string, len(a.Sender)),
	}
	copy(rev.Sender, a.Target)
	copy(rev.Target, a.Sender)
	return rev
}

// Validate checks the non-empty invariant on both chains.
func (a Address) Validate() error {
	if len(a.Sender) == 0 || len(a.Target) == 0 {
		return fmt.Errorf("%w: sender=%d hops, target=%d hops", ErrInvalidAddress, len(a.Sender), len(a.Target))
	}
	for _, hop := range a.Sender {
		if hop == "" {
			return fmt.Errorf("%w: empty hop name in sender chain", ErrInvalidAddress)
		}
	}
	for _, hop := range a.Target {
		if hop == "" {
			return fmt.Errorf("%w: empty hop name in target chain", ErrInvalidAddress)
		}
	}
	return nil
}

// SenderEndpoint returns the endpoint hop of the sender chain.
// Returns "" for an unvalidated empty chain.
func (a Address) SenderEndpoint() string {
	if len(a.Sender) == 0 {
		return ""
	}
	return a.Sender[0]
}

// TargetEndpoint returns the endpoint hop of the target chain.
// Transports route on this value. Returns "" for an unvalidated empty chain.
func (a Address) TargetEndpoint() string {
	if len(a.Target) == 0 {
		return ""
	}
	return a.Target[0]
}
