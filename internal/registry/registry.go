package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Method is one invokable entry in an object's catalog.
type Method struct {
	// Invoke is the typed implementation. Required.
	Invoke Invokable

	// Params are human-readable parameter hints for discovery
	// (e.g. ["volume_ml", "speed?"]). Optional.
	Params []string

	// Doc is a one-line description for discovery. Optional.
	Doc string
}

// Object is a registered controllable instrument: an id, a class name for
// discovery, and its invokable methods.
type Object struct {
	ID      string
	Class   string
	methods map[string]Method
}

// NewObject creates an empty object with the given id and class name.
func NewObject(id, class string) *Object {
	return &Object{
		ID:      id,
		Class:   class,
		methods: make(map[string]Method),
	}
}

// Method adds or replaces an invokable method on the object.
// Building the catalog happens before Register; Object itself is not
// synchronized.
func (o *Object) Method(name string, m Method) *Object {
	o.methods[name] = m
	return o
}

// MethodSpec describes one method in a discovery catalog.
type MethodSpec struct {
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Doc    string   `json:"doc,omitempty"`
}

// ObjectSpec describes one registered object in a discovery catalog.
type ObjectSpec struct {
	ObjectID string       `json:"object_id"`
	Class    string       `json:"class"`
	Methods  []MethodSpec `json:"methods"`
}

// Registry is the process-local mapping from object_id to registered
// objects. It is populated by the hosting process at startup and queried
// by the dispatcher; the dispatcher never mutates it.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]*Object
	logger  Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		objects: make(map[string]*Object),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register adds an object to the registry.
// Returns ErrAlreadyRegistered if the object_id is already taken.
func (r *Registry) Register(obj *Object) error {
	if obj == nil || obj.ID == "" {
		return fmt.Errorf("registry: object with empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[obj.ID]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, obj.ID)
	}
	r.objects[obj.ID] = obj

	r.logger.Info("object registered", "object_id", obj.ID, "class", obj.Class, "methods", len(obj.methods))
	return nil
}

// Unregister removes an object from the registry.
// Returns ErrObjectNotFound if the object_id is not registered.
func (r *Registry) Unregister(objectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.objects[objectID]; !exists {
		return fmt.Errorf("%w: %q", ErrObjectNotFound, objectID)
	}
	delete(r.objects, objectID)

	r.logger.Info("object unregistered", "object_id", objectID)
	return nil
}

// Resolve returns the invokable registered for (objectID, method).
//
// Returns ErrObjectNotFound or ErrMethodNotFound so the dispatcher can map
// the failure to the matching reply status.
func (r *Registry) Resolve(objectID, method string) (Invokable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[objectID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, objectID)
	}
	m, ok := obj.methods[method]
	if !ok || m.Invoke == nil {
		return nil, fmt.Errorf("%w: %q has no method %q", ErrMethodNotFound, objectID, method)
	}
	return m.Invoke, nil
}

// Describe returns the discovery catalog of all registered objects,
// sorted by object_id for stable output.
func (r *Registry) Describe() []ObjectSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]ObjectSpec, 0, len(r.objects))
	for _, obj := range r.objects {
		spec := ObjectSpec{
			ObjectID: obj.ID,
			Class:    obj.Class,
			Methods:  make([]MethodSpec, 0, len(obj.methods)),
		}
		for name, m := range obj.methods {
			spec.Methods = append(spec.Methods, MethodSpec{
				Name:   name,
				Params: m.Params,
				Doc:    m.Doc,
			})
		}
		sort.Slice(spec.Methods, func(i, j int) bool {
			return spec.Methods[i].Name < spec.Methods[j].Name
		})
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].ObjectID < specs[j].ObjectID
	})
	return specs
}

// Count returns the number of registered objects.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
