package message

import "fmt"

// Kind discriminates the two envelope types a transport carries.
type Kind string

const (
	// KindRequest marks an envelope carrying a Request.
	KindRequest Kind = "request"

	// KindReply marks an envelope carrying a Reply.
	KindReply Kind = "reply"
)

// Envelope is a Request or Reply as transmitted over a transport.
// Exactly one of Request/Reply is set, selected by Kind.
type Envelope struct {
	Kind    Kind
	Request *Request
	Reply   *Reply
}

// WrapRequest wraps a Request for transmission.
func WrapRequest(req *Request) *Envelope {
	return &Envelope{Kind: KindRequest, Request: req}
}

// WrapReply wraps a Reply for transmission.
func WrapReply(rep *Reply) *Envelope {
	return &Envelope{Kind: KindReply, Reply: rep}
}

// Priority reports the scheduling class of the wrapped message.
func (e *Envelope) Priority() bool {
	if e.Kind == KindRequest {
		return e.Request.Priority
	}
	return e.Reply.Priority
}

// Rank returns the tie-breaker rank of the wrapped message.
func (e *Envelope) Rank() int32 {
	if e.Kind == KindRequest {
		return e.Request.Rank
	}
	return e.Reply.Rank
}

// TargetEndpoint returns the endpoint hop the envelope routes to.
func (e *Envelope) TargetEndpoint() string {
	if e.Kind == KindRequest {
		return e.Request.Address.TargetEndpoint()
	}
	return e.Reply.Address.TargetEndpoint()
}

// Validate checks the wrapped message against its kind.
func (e *Envelope) Validate() error {
	switch e.Kind {
	case KindRequest:
		if e.Request == nil {
			return fmt.Errorf("%w: request envelope without request", ErrDecode)
		}
		return e.Request.Validate()
	case KindReply:
		if e.Reply == nil {
			return fmt.Errorf("%w: reply envelope without reply", ErrDecode)
		}
		return e.Reply.Validate()
	default:
		return fmt.Errorf("%w: unknown envelope kind %q", ErrDecode, e.Kind)
	}
}
