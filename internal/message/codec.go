package message

import (
	"encoding/json"
	"fmt"
)

// Codec encodes and decodes Requests and Replies for a transport.
//
// Implementations must be symmetric: decoding an encoded message yields an
// equal message (all fields preserved exactly). Decode methods validate the
// result and wrap failures with ErrDecode.
type Codec interface {
	EncodeRequest(req *Request) ([]byte, error)
	DecodeRequest(data []byte) (*Request, error)
	EncodeReply(rep *Reply) ([]byte, error)
	DecodeReply(data []byte) (*Reply, error)
}

// JSONCodec implements Codec using the JSON wire schema. It is the default
// interoperability encoding; both sides of a session must agree on it.
type JSONCodec struct{}

// EncodeRequest serializes a Request to its JSON wire form.
func (JSONCodec) EncodeRequest(req *Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request %s: %w", req.RequestID, err)
	}
	return data, nil
}

// DecodeRequest parses and validates a Request from its JSON wire form.
func (JSONCodec) DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: parsing request: %w", ErrDecode, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// EncodeReply serializes a Reply to its JSON wire form.
func (JSONCodec) EncodeReply(rep *Reply) ([]byte, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("encoding reply %s: %w", rep.ReplyID, err)
	}
	return data, nil
}

// DecodeReply parses and validates a Reply from its JSON wire form.
func (JSONCodec) DecodeReply(data []byte) (*Reply, error) {
	var rep Reply
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("%w: parsing reply: %w", ErrDecode, err)
	}
	if err := rep.Validate(); err != nil {
		return nil, err
	}
	return &rep, nil
}
