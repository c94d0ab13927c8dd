package message

import (
	"errors"
	"testing"
)

func TestBuildAddress_Valid(t *testing.T) {
	addr, err := BuildAddress([]string{"bench-01"}, []string{"rig-02", "arm", "gripper"})
	if err != nil {
		t.Fatalf("BuildAddress() error = %v", err)
	}

	if got := addr.SenderEndpoint(); got != "bench-01" {
		t.Errorf("SenderEndpoint() = %q, want %q", got, "bench-01")
	}
	if got := addr.TargetEndpoint(); got != "rig-02" {
		t.Errorf("TargetEndpoint() = %q, want %q", got, "rig-02")
	}
	if len(addr.Target) != 3 {
		t.Errorf("len(Target) = %d, want 3", len(addr.Target))
	}
}

func TestBuildAddress_EmptyChains(t *testing.T) {
	tests := []struct {
		name   string
		sender []string
		target []string
	}{
		{"empty sender", nil, []string{"rig-02"}},
		{"empty target", []string{"bench-01"}, nil},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildAddress(tt.sender, tt.target)
			if !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("BuildAddress() error = %v, want ErrInvalidAddress", err)
			}
		})
	}
}

func TestBuildAddress_CopiesChains(t *testing.T) {
	sender := []string{"bench-01"}
	addr, err := BuildAddress(sender, []string{"rig-02"})
	if err != nil {
		t.Fatalf("BuildAddress() error = %v", err)
	}

	sender[0] = "mutated"
	if addr.Sender[0] != "bench-01" {
		t.Error("BuildAddress() must copy chains, not alias them")
	}
}

func TestAddress_Reverse(t *testing.T) {
	addr, err := BuildAddress([]string{"bench-01"}, []string{"rig-02", "pump1"})
	if err != nil {
		t.Fatalf("BuildAddress() error = %v", err)
	}

	rev := addr.Reverse()

	if rev.SenderEndpoint() != "rig-02" {
		t.Errorf("Reverse().SenderEndpoint() = %q, want %q", rev.SenderEndpoint(), "rig-02")
	}
	if rev.TargetEndpoint() != "bench-01" {
		t.Errorf("Reverse().TargetEndpoint() = %q, want %q", rev.TargetEndpoint(), "bench-01")
	}
	if len(rev.Sender) != 2 || rev.Sender[1] != "pump1" {
		t.Errorf("Reverse().Sender = %v, want [rig-02 pump1]", rev.Sender)
	}

	// Reversing twice restores the original route.
	back := rev.Reverse()
	if back.SenderEndpoint() != addr.SenderEndpoint() || back.TargetEndpoint() != addr.TargetEndpoint() {
		t.Errorf("double Reverse() = %+v, want %+v", back, addr)
	}
}

func TestAddress_Validate_EmptyHopName(t *testing.T) {
	addr := Address{Sender: []string{"bench-01"}, Target: []string{"rig-02", ""}}
	if err := addr.Validate(); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Validate() error = %v, want ErrInvalidAddress", err)
	}
}
