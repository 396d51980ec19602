package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command // primary names only
	aliases map[string]string  // alias -> primary name
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds c under its name and aliases. A name or alias that is
// empty, contains whitespace, starts with "-" or is already taken by any
// command is rejected, and nothing is registered.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if err := r.checkFree(name, "command"); err != nil {
		return err
	}
	seen := map[string]bool{name: true}
	for _, alias := range c.Aliases() {
		if seen[alias] {
			return fmt.Errorf("command %s lists %s twice", name, alias)
		}
		seen[alias] = true
		if err := r.checkFree(alias, "command alias"); err != nil {
			return err
		}
	}

	r.byName[name] = c
	for _, alias := range c.Aliases() {
		r.aliases[alias] = name
	}
	return nil
}

// checkFree validates a name and reports whether it is already taken.
// Callers hold r.mu.
func (r *Registry) checkFree(name, what string) error {
	if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("invalid %s name: %q", what, name)
	}
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%s already registered: %s", what, name)
	}
	if owner, ok := r.aliases[name]; ok {
		return fmt.Errorf("%s already registered: %s (alias of %s)", what, name, owner)
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	cmd, _, ok := r.Lookup(name)
	return cmd, ok
}

// Lookup is Find that also reports whether name was an alias.
func (r *Registry) Lookup(name string) (cmd Command, viaAlias bool, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cmd, ok := r.byName[name]; ok {
		return cmd, false, true
	}
	if primary, ok := r.aliases[name]; ok {
		return r.byName[primary], true, true
	}
	return nil, false, false
}

// AliasesOf returns the aliases registered for the named command, sorted.
func (r *Registry) AliasesOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []string
	for alias, primary := range r.aliases {
		if primary == name {
			result = append(result, alias)
		}
	}
	sort.Strings(result)
	return result
}

// All returns every registered command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.byName[name]
	}
	return result
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry. It panics on a clash,
// which only a programming error can cause.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
