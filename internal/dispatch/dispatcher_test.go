package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bennettsmith-io/labrelay-core/internal/message"
	"github.com/bennettsmith-io/labrelay-core/internal/registry"
	"github.com/bennettsmith-io/labrelay-core/internal/transport"
)

// testRegistry builds a registry with a syringe pump exposing the usual
// failure modes.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	pump := registry.NewObject("pump1", "SyringePump").
		Method("dispense", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				vol, err := call.FloatArg(0)
				if err != nil {
					return nil, err
				}
				return map[string]float64{"dispensed_ml": vol}, nil
			},
			Params: []string{"volume_ml"},
		}).
		Method("jam", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				return nil, errors.New("plunger stalled")
			},
		}).
		Method("explode", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				panic("boom")
			},
		}).
		Method("slow", registry.Method{
			Invoke: func(ctx context.Context, call registry.Call) (any, error) {
				select {
				case <-time.After(5 * time.Second):
					return "done", nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			},
		})
	if err := reg.Register(pump); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return reg
}

// dispatchAndReceive runs one request through a dispatcher on an
// in-process bus and returns the reply envelope seen by the requester.
func dispatchAndReceive(t *testing.T, cfg DispatcherConfig, objectID, method string, args []string) *message.Reply {
	t.Helper()

	bus := transport.NewBus()
	server := bus.Endpoint("lab-node-1")
	requester := bus.Endpoint("operator")

	cfg.Endpoint = "lab-node-1"
	d := NewDispatcher(testRegistry(t), server, cfg)

	addr, err := message.BuildAddress([]string{"operator"}, []string{"lab-node-1"})
	if err != nil {
		t.Fatalf("BuildAddress failed: %v", err)
	}
	req, err := message.NewRequest(addr, objectID, method, args, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}

	ctx := context.Background()
	d.Dispatch(ctx, req)
	d.Wait()

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	env, err := requester.Receive(recvCtx)
	if err != nil {
		t.Fatalf("Receive reply failed: %v", err)
	}
	if env.Kind != message.KindReply {
		t.Fatalf("expected reply envelope, got %q", env.Kind)
	}
	if env.Reply.RequestID != req.RequestID {
		t.Fatalf("reply request_id = %q, want %q", env.Reply.RequestID, req.RequestID)
	}
	return env.Reply
}

func TestDispatcher_Success(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "pump1", "dispense", []string{"2.5"})

	if rep.Status != message.StatusSuccess {
		t.Fatalf("status = %s, want Success (error: %s)", rep.Status, rep.Error)
	}

	var result map[string]float64
	if err := json.Unmarshal(rep.Data, &result); err != nil {
		t.Fatalf("decoding reply data: %v", err)
	}
	if result["dispensed_ml"] != 2.5 {
		t.Errorf("dispensed_ml = %v, want 2.5", result["dispensed_ml"])
	}

	// Reply address is the request address reversed.
	if rep.Address.TargetEndpoint() != "operator" {
		t.Errorf("reply target endpoint = %q, want operator", rep.Address.TargetEndpoint())
	}
	if rep.Address.SenderEndpoint() != "lab-node-1" {
		t.Errorf("reply sender endpoint = %q, want lab-node-1", rep.Address.SenderEndpoint())
	}
}

func TestDispatcher_UnknownObject(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "ghost", "dispense", []string{"1"})
	if rep.Status != message.StatusUnknownObject {
		t.Errorf("status = %s, want UnknownObject", rep.Status)
	}
	if rep.Error == "" {
		t.Error("expected error description in reply")
	}
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "pump1", "levitate", nil)
	if rep.Status != message.StatusUnknownMethod {
		t.Errorf("status = %s, want UnknownMethod", rep.Status)
	}
}

func TestDispatcher_DecodeError(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "pump1", "dispense", []string{"not-a-number"})
	if rep.Status != message.StatusDecodeError {
		t.Errorf("status = %s, want DecodeError", rep.Status)
	}
}

func TestDispatcher_DecodeErrorMissingArg(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "pump1", "dispense", nil)
	if rep.Status != message.StatusDecodeError {
		t.Errorf("status = %s, want DecodeError", rep.Status)
	}
}

func TestDispatcher_ExecutionError(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "pump1", "jam", nil)
	if rep.Status != message.StatusExecutionError {
		t.Errorf("status = %s, want ExecutionError", rep.Status)
	}
	if rep.Error != "plunger stalled" {
		t.Errorf("error = %q, want %q", rep.Error, "plunger stalled")
	}
}

func TestDispatcher_PanicBecomesExecutionError(t *testing.T) {
	rep := dispatchAndReceive(t, DispatcherConfig{}, "pump1", "explode", nil)
	if rep.Status != message.StatusExecutionError {
		t.Errorf("status = %s, want ExecutionError", rep.Status)
	}
}

func TestDispatcher_InvokeTimeout(t *testing.T) {
	cfg := DispatcherConfig{InvokeTimeout: 50 * time.Millisecond}
	rep := dispatchAndReceive(t, cfg, "pump1", "slow", nil)
	if rep.Status != message.StatusExecutionError {
		t.Errorf("status = %s, want ExecutionError", rep.Status)
	}
}

func TestDispatcher_ConcurrentMode(t *testing.T) {
	bus := transport.NewBus()
	server := bus.Endpoint("lab-node-1")
	requester := bus.Endpoint("operator")

	d := NewDispatcher(testRegistry(t), server, DispatcherConfig{
		Endpoint:      "lab-node-1",
		Concurrent:    true,
		MaxConcurrent: 4,
	})

	ctx := context.Background()
	const n = 10
	sent := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		addr, err := message.BuildAddress([]string{"operator"}, []string{"lab-node-1"})
		if err != nil {
			t.Fatalf("BuildAddress failed: %v", err)
		}
		req, err := message.NewRequest(addr, "pump1", "dispense", []string{fmt.Sprintf("%d", i)}, nil)
		if err != nil {
			t.Fatalf("NewRequest failed: %v", err)
		}
		sent[req.RequestID] = true
		d.Dispatch(ctx, req)
	}
	d.Wait()

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		env, err := requester.Receive(recvCtx)
		if err != nil {
			t.Fatalf("Receive %d failed: %v", i, err)
		}
		if !sent[env.Reply.RequestID] {
			t.Errorf("unexpected reply for %q", env.Reply.RequestID)
		}
		delete(sent, env.Reply.RequestID)
		if env.Reply.Status != message.StatusSuccess {
			t.Errorf("status = %s, want Success", env.Reply.Status)
		}
	}
	if len(sent) != 0 {
		t.Errorf("%d requests never replied", len(sent))
	}
}

func TestDispatcher_ReplyInheritsPriority(t *testing.T) {
	bus := transport.NewBus()
	server := bus.Endpoint("lab-node-1")
	requester := bus.Endpoint("operator")

	d := NewDispatcher(testRegistry(t), server, DispatcherConfig{Endpoint: "lab-node-1"})

	addr, err := message.BuildAddress([]string{"operator"}, []string{"lab-node-1"})
	if err != nil {
		t.Fatalf("BuildAddress failed: %v", err)
	}
	req, err := message.NewRequest(addr, "pump1", "dispense", []string{"1"}, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req = req.WithPriority(3)

	ctx := context.Background()
	d.Dispatch(ctx, req)

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	env, err := requester.Receive(recvCtx)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if !env.Reply.Priority {
		t.Error("reply did not inherit priority flag")
	}
	if env.Reply.Rank != 3 {
		t.Errorf("reply rank = %d, want 3", env.Reply.Rank)
	}
}
