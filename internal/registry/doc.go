// Package registry maps (object_id, method) pairs to typed invokables.
//
// The hosting process registers its controllable objects (pumps, movers,
// balances, cameras) at startup. The dispatcher only consumes the lookup
// capability: Resolve returns the invokable for a registered combination
// and a typed error otherwise. Unregistered combinations are rejected
// explicitly; there is no reflection-based fallback.
//
// # Method Catalog
//
// Each registered object carries a method catalog (name, parameter hints,
// doc line) so a remote controller can discover what an endpoint exposes
// via Describe(). The catalog can additionally be persisted to SQLite
// through Repository, letting bench tooling list a rig's instruments
// across restarts.
//
// # Usage
//
//	pump := registry.NewObject("pump1", "SyringePump")
//	pump.Method("dispense", registry.Method{
//	    Params: []string{"volume_ml"},
//	    Doc:    "Dispense the given volume.",
//	    Invoke: func(ctx context.Context, call registry.Call) (any, error) {
//	        vol, err := call.FloatArg(0)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return pumpDriver.Dispense(ctx, vol)
//	    },
//	})
//
//	reg := registry.New()
//	if err := reg.Register(pump); err != nil { ... }
//
// Thread Safety: all Registry methods are safe for concurrent use.
package registry
