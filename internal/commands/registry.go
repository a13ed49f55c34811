package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// maxSuggestDistance is the largest edit distance Suggest accepts.
const maxSuggestDistance = 2

// Registry maps command names and aliases to commands. Lookups ignore case.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]Command),
	}
}

// Register adds a command under its name and aliases.
// Returns an error if any of them is already taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for i, key := range keys {
		key = strings.ToLower(key)
		if _, exists := r.cmds[key]; exists {
			if i == 0 {
				return fmt.Errorf("command already registered: %s", key)
			}
			return fmt.Errorf("command alias already registered: %s", key)
		}
		keys[i] = key
	}
	for _, key := range keys {
		r.cmds[key] = c
	}
	return nil
}

// Find looks up a command by name or alias, ignoring case.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[strings.ToLower(name)]
	return cmd, ok
}

// All returns all unique commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]Command)
	for _, cmd := range r.cmds {
		seen[cmd.Name()] = cmd
	}
	result := make([]Command, 0, len(seen))
	for _, cmd := range seen {
		result = append(result, cmd)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Suggest returns the registered name or alias closest to a mistyped name,
// or "" when nothing is close. A unique prefix match wins over edit distance.
func (r *Registry) Suggest(name string) string {
	name = strings.ToLower(name)
	if name == "" {
		return ""
	}

	r.mu.RLock()
	keys := make([]string, 0, len(r.cmds))
	for key := range r.cmds {
		keys = append(keys, key)
	}
	r.mu.RUnlock()
	sort.Strings(keys)

	var prefixed []string
	for _, key := range keys {
		if strings.HasPrefix(key, name) {
			prefixed = append(prefixed, key)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0]
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, key := range keys {
		if d := editDistance(name, key); d < bestDist {
			best, bestDist = key, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
