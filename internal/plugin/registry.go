package plugin

import (
	"fmt"
	"sync"
)

// descriptor is a registered plugin together with its normalized metadata.
type descriptor struct {
	meta   PluginMetadata
	plugin Plugin
}

// Registry holds plugins in registration order and answers file-type lookups.
//
// Lookup rules:
//   - converters and compressors: exact (case-folded) extension match, the most
//     recently registered plugin wins
//   - templates: the highest priority match wins, ties go to the most recently
//     registered plugin
//
// A Registry is constructed explicitly and populated at process start.
type Registry struct {
	mu      sync.RWMutex
	entries []descriptor
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a plugin to the registry.
// Returns an error if the metadata is invalid, the declared kind does not match the
// implemented capability, or the same name and version is already registered for
// that kind.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil plugin")
	}

	meta := p.Metadata()
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}
	if err := checkCapability(meta.Kind, p); err != nil {
		return err
	}
	meta.FileType = NormalizeFileType(meta.FileType)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.meta.Kind == meta.Kind && e.meta.Name == meta.Name && e.meta.Version == meta.Version {
			return fmt.Errorf("%s %s@%s already registered", meta.Kind, meta.Name, meta.Version)
		}
	}

	r.entries = append(r.entries, descriptor{meta: meta, plugin: p})
	return nil
}

// MustRegister registers plugins and panics on the first error.
func (r *Registry) MustRegister(plugins ...Plugin) {
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

func checkCapability(kind Kind, p Plugin) error {
	var ok bool
	switch kind {
	case KindConverter:
		_, ok = p.(Converter)
	case KindCompressor:
		_, ok = p.(Compressor)
	case KindTemplate:
		_, ok = p.(Template)
	}
	if !ok {
		return fmt.Errorf("plugin %s declares kind %s but does not implement it", p.Metadata().Name, kind)
	}
	return nil
}

// FindHandler returns the plugin of the given kind that handles ext.
// A false result is a valid outcome meaning no plugin applies.
func (r *Registry) FindHandler(kind Kind, ext string) (Plugin, bool) {
	ext = NormalizeFileType(ext)
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if kind == KindTemplate {
		var best *descriptor
		for i := range r.entries {
			e := &r.entries[i]
			if e.meta.Kind != kind || e.meta.FileType != ext {
				continue
			}
			// >= keeps the later registration on equal priority.
			if best == nil || e.meta.Priority >= best.meta.Priority {
				best = e
			}
		}
		if best == nil {
			return nil, false
		}
		return best.plugin, true
	}

	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.meta.Kind == kind && e.meta.FileType == ext {
			return e.plugin, true
		}
	}
	return nil, false
}

// FindConverter returns the converter registered for ext.
func (r *Registry) FindConverter(ext string) (Converter, bool) {
	p, ok := r.FindHandler(KindConverter, ext)
	if !ok {
		return nil, false
	}
	return p.(Converter), true
}

// FindCompressor returns the compressor registered for the output type.
func (r *Registry) FindCompressor(outputType string) (Compressor, bool) {
	p, ok := r.FindHandler(KindCompressor, outputType)
	if !ok {
		return nil, false
	}
	return p.(Compressor), true
}

// FindTemplate returns the template selected for ext.
func (r *Registry) FindTemplate(ext string) (Template, bool) {
	p, ok := r.FindHandler(KindTemplate, ext)
	if !ok {
		return nil, false
	}
	return p.(Template), true
}

// List returns the plugins of a kind in registration order.
func (r *Registry) List(kind Kind) []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Plugin
	for _, e := range r.entries {
		if e.meta.Kind == kind {
			result = append(result, e.plugin)
		}
	}
	return result
}

// Count returns the total number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
