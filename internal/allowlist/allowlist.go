package allowlist

import (
	"bufio"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/OneOfOne/xxhash"
)

// Allowlist holds software strings an operator trusts, e.g. an in-house
// raw converter. Matching ignores case and surrounding whitespace.
type Allowlist struct {
	mu    sync.RWMutex
	items map[string]string // folded -> as entered
	path  string
	gen   uint64
}

// New creates or loads an allowlist from the given path. A missing file
// starts an empty list; an empty path keeps the list in memory only.
func New(path string) (*Allowlist, error) {
	a := &Allowlist{
		items: make(map[string]string),
		path:  path,
	}
	if path != "" {
		if err := a.load(); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	a.rehash()
	return a, nil
}

// load reads the file line by line. Blank lines and # comments are skipped.
func (a *Allowlist) load() error {
	file, err := os.Open(a.path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			a.items[fold(line)] = line
		}
	}
	return scanner.Err()
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Contains reports whether value is allowlisted.
func (a *Allowlist) Contains(value string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.items[fold(value)]
	return ok
}

// Entries returns the allowlisted strings in sorted order.
func (a *Allowlist) Entries() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.items))
	for _, v := range a.items {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Add adds a new value and appends it to the backing file.
func (a *Allowlist) Add(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := fold(value)
	if _, ok := a.items[key]; ok {
		return nil
	}
	if a.path != "" {
		f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := f.WriteString(value + "\n"); err != nil {
			return err
		}
	}
	a.items[key] = value
	a.rehash()
	return nil
}

// rehash digests the folded entries. Callers hold the write lock.
func (a *Allowlist) rehash() {
	keys := make([]string, 0, len(a.items))
	for k := range a.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	a.gen = xxhash.ChecksumString64(strings.Join(keys, "\n"))
}

// Generation identifies the current set of entries. It changes whenever an
// entry is added and survives restarts, since it is derived from the entries.
func (a *Allowlist) Generation() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gen
}
