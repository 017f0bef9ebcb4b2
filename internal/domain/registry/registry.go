package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"blocks-cms/internal/domain/errs"

	"github.com/rs/zerolog/log"
)

// Registry maps model names to their one shared descriptor. It is filled at
// startup, sealed, and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	models  map[string]*ModelDescriptor
	aliases map[string]string
	sealed  bool
}

func New() *Registry {
	return &Registry{
		models:  make(map[string]*ModelDescriptor),
		aliases: make(map[string]string),
	}
}

// Register stores a copy of d. Registering an equal descriptor again is a
// no-op that returns the stored instance.
func (r *Registry) Register(d ModelDescriptor) (*ModelDescriptor, error) {
	nd := d.clone()
	if err := nd.normalize(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.models[nd.Name]; ok {
		if reflect.DeepEqual(existing, nd) {
			return existing, nil
		}
		return nil, fmt.Errorf("model %s: %w", nd.Name, errs.ErrDuplicateModel)
	}
	if r.sealed {
		return nil, fmt.Errorf("register %s: %w", nd.Name, errs.ErrRegistrySealed)
	}
	if canonical, ok := r.aliases[nd.Name]; ok {
		return nil, fmt.Errorf("model %s is an alias of %s: %w", nd.Name, canonical, errs.ErrDuplicateModel)
	}
	r.models[nd.Name] = nd
	log.Debug().Str("model", nd.Name).Str("table", nd.TableName).Msg("model registered")
	return nd, nil
}

// MustRegister panics on error; for static catalogs.
func (r *Registry) MustRegister(d ModelDescriptor) *ModelDescriptor {
	out, err := r.Register(d)
	if err != nil {
		panic(err)
	}
	return out
}

// Alias maps a deprecated name onto a registered canonical model.
func (r *Registry) Alias(old, canonical string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("alias %s: %w", old, errs.ErrRegistrySealed)
	}
	if _, ok := r.models[canonical]; !ok {
		return fmt.Errorf("alias %s -> %s: %w", old, canonical, errs.ErrUnknownModel)
	}
	if _, ok := r.models[old]; ok {
		return fmt.Errorf("alias %s shadows a registered model: %w", old, errs.ErrDuplicateModel)
	}
	if prev, ok := r.aliases[old]; ok && prev != canonical {
		return fmt.Errorf("alias %s already points to %s: %w", old, prev, errs.ErrDuplicateModel)
	}
	r.aliases[old] = canonical
	return nil
}

// Resolve returns the shared descriptor for name, following aliases.
func (r *Registry) Resolve(name string) (*ModelDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.models[name]; ok {
		return d, nil
	}
	if canonical, ok := r.aliases[name]; ok {
		log.Debug().Str("alias", name).Str("model", canonical).Msg("deprecated model name resolved")
		return r.models[canonical], nil
	}
	return nil, fmt.Errorf("model %s: %w", name, errs.ErrUnknownModel)
}

func (r *Registry) TableNameFor(name string) (string, error) {
	d, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	return d.TableName, nil
}

// Canonical returns the canonical name for name (itself when not an alias).
func (r *Registry) Canonical(name string) (string, error) {
	d, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	return d.Name, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for n := range r.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Models returns all descriptors ordered by name.
func (r *Registry) Models() []*ModelDescriptor {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ModelDescriptor, 0, len(names))
	for _, n := range names {
		out = append(out, r.models[n])
	}
	return out
}

// Aliases returns a copy of the deprecated-name table.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out
}

// Seal resolves every relation and freezes the registry.
func (r *Registry) Seal() error {
	if err := r.ResolveRelations(); err != nil {
		return err
	}
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
	log.Info().Int("models", len(r.Names())).Msg("model registry sealed")
	return nil
}

func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
