package message

import (
	"errors"
	"reflect"
	"testing"
)

func testAddress(t *testing.T) Address {
	t.Helper()
	addr, err := BuildAddress([]string{"bench-01"}, []string{"rig-02"})
	if err != nil {
		t.Fatalf("BuildAddress() error = %v", err)
	}
	return addr
}

func TestJSONCodec_RequestRoundTrip(t *testing.T) {
	req, err := NewRequest(testAddress(t), "pump1", "dispense",
		[]string{FormatFloat(5.0), FormatBool(true)},
		map[string]string{"speed": FormatInt(200)},
	)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req = req.WithPriority(3)

	codec := JSONCodec{}
	data, err := codec.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}

	decoded, err := codec.DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}

	if !reflect.DeepEqual(req, decoded) {
		t.Errorf("round trip mismatch:\n sent: %+v\n got:  %+v", req, decoded)
	}
}

func TestJSONCodec_ReplyRoundTrip(t *testing.T) {
	req, err := NewRequest(testAddress(t), "pump1", "dispense", nil, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}

	rep := NewReply(req, StatusSuccess, []byte(`{"dispensed_ml":5}`))

	codec := JSONCodec{}
	data, err := codec.EncodeReply(rep)
	if err != nil {
		t.Fatalf("EncodeReply() error = %v", err)
	}

	decoded, err := codec.DecodeReply(data)
	if err != nil {
		t.Fatalf("DecodeReply() error = %v", err)
	}

	if !reflect.DeepEqual(rep, decoded) {
		t.Errorf("round trip mismatch:\n sent: %+v\n got:  %+v", rep, decoded)
	}
	if decoded.RequestID != req.RequestID {
		t.Errorf("RequestID = %q, want %q", decoded.RequestID, req.RequestID)
	}
}

func TestJSONCodec_DecodeRequest_Invalid(t *testing.T) {
	codec := JSONCodec{}

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"missing request_id", `{"address":{"sender":["a"],"target":["b"]},"object_id":"x","method":"y"}`},
		{"missing object_id", `{"request_id":"r1","address":{"sender":["a"],"target":["b"]},"method":"y"}`},
		{"empty target chain", `{"request_id":"r1","address":{"sender":["a"],"target":[]},"object_id":"x","method":"y"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.DecodeRequest([]byte(tt.data))
			if err == nil {
				t.Fatal("DecodeRequest() expected error, got nil")
			}
			if !errors.Is(err, ErrDecode) && !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("DecodeRequest() error = %v, want ErrDecode or ErrInvalidAddress", err)
			}
		})
	}
}

func TestNewReply_ReversesAddress(t *testing.T) {
	req, err := NewRequest(testAddress(t), "pump1", "dispense", nil, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req = req.WithPriority(7)

	rep := NewReply(req, StatusSuccess, nil)

	if rep.Address.SenderEndpoint() != "rig-02" {
		t.Errorf("reply sender endpoint = %q, want %q", rep.Address.SenderEndpoint(), "rig-02")
	}
	if rep.Address.TargetEndpoint() != "bench-01" {
		t.Errorf("reply target endpoint = %q, want %q", rep.Address.TargetEndpoint(), "bench-01")
	}
	if !rep.Priority || rep.Rank != 7 {
		t.Errorf("reply scheduling = (priority=%v, rank=%d), want (true, 7)", rep.Priority, rep.Rank)
	}
	if rep.ReplyID == "" || rep.ReplyID == req.RequestID {
		t.Errorf("ReplyID = %q, want fresh non-empty id", rep.ReplyID)
	}
}

func TestStatus_Terminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("Pending must not be terminal")
	}
	for _, s := range []Status{StatusSuccess, StatusUnknownObject, StatusUnknownMethod, StatusDecodeError, StatusExecutionError} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}
