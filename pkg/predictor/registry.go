package predictor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds all known predictor adapters keyed by lower-cased name.
type Registry struct {
	mu         sync.RWMutex
	predictors map[string]Predictor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{predictors: make(map[string]Predictor)}
}

// Register adds a predictor. Registering the same name twice is an error.
func (r *Registry) Register(p Predictor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(p.Name())
	if _, exists := r.predictors[key]; exists {
		return fmt.Errorf("predictor %q already registered", p.Name())
	}
	r.predictors[key] = p
	return nil
}

// Get retrieves a predictor by name, case-insensitively.
func (r *Registry) Get(name string) (Predictor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.predictors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("predictor %q not found", name)
	}
	return p, nil
}

// List returns every registered predictor sorted by name.
func (r *Registry) List() []Predictor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Predictor, 0, len(r.predictors))
	for _, p := range r.predictors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// SelectionOptions filter the registry down to the predictors of one run.
// A non-empty include list wins over the exclude list; the struct and
// sequence gates remove whole predictor classes.
type SelectionOptions struct {
	Include       []string
	Exclude       []string
	AllowStruct   bool
	AllowSequence bool
}

// Select applies the filters and returns the run's predictors. An empty
// selection is an error: a run with no predictors is a configuration
// mistake, not an empty result.
func (r *Registry) Select(opts SelectionOptions) ([]Predictor, error) {
	include := lowerSet(opts.Include)
	exclude := lowerSet(opts.Exclude)
	if len(include) > 0 {
		exclude = nil
	}

	var out []Predictor
	for _, p := range r.List() {
		if p.InputType() == InputSequence && !opts.AllowSequence {
			continue
		}
		if p.InputType() != InputSequence && !opts.AllowStruct {
			continue
		}
		key := strings.ToLower(p.Name())
		if len(include) > 0 {
			if _, ok := include[key]; !ok {
				continue
			}
		} else if _, ok := exclude[key]; ok {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no predictors left after applying include/exclude lists")
	}
	return out, nil
}

func lowerSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	return set
}
