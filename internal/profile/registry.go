package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownProfile is returned when a profile id is not registered.
var ErrUnknownProfile = errors.New("unknown profile")

// Registry resolves instruments to profiles. Profiles handed out by the
// registry are shared and must be treated as read-only.
type Registry struct {
	mu          sync.RWMutex
	profiles    map[string]*Profile
	assignments map[string]string
	defaultID   string
}

// NewRegistry returns a registry holding the built-in profiles, with 6669
// assigned to long-swing, 3231 to short-swing and long-swing as default.
func NewRegistry() *Registry {
	r := &Registry{
		profiles:    make(map[string]*Profile),
		assignments: make(map[string]string),
		defaultID:   LongSwingID,
	}
	for _, p := range []*Profile{LongSwing(), ShortSwing()} {
		r.profiles[p.ID] = p
	}
	r.assignments["6669"] = LongSwingID
	r.assignments["3231"] = ShortSwingID
	return r
}

// NormalizeInstrument trims and upper-cases an instrument id and strips an
// exchange suffix such as ".TW".
func NormalizeInstrument(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if i := strings.LastIndex(id, "."); i > 0 {
		id = id[:i]
	}
	return id
}

// Register validates p and stores a copy of it, replacing any profile with
// the same id.
func (r *Registry) Register(p *Profile) error {
	if p == nil {
		return errors.New("register: nil profile")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p.Clone()
	return nil
}

// Get returns the profile with the given id.
func (r *Registry) Get(id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return p, nil
}

// List returns every registered profile ordered by id.
func (r *Registry) List() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Assign maps an instrument to a registered profile.
func (r *Registry) Assign(instrument, profileID string) error {
	key := NormalizeInstrument(instrument)
	if key == "" {
		return errors.New("assign: empty instrument id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profileID]; !ok {
		return fmt.Errorf("assign %s: %w: %q", key, ErrUnknownProfile, profileID)
	}
	r.assignments[key] = profileID
	return nil
}

// Assignments returns a copy of the instrument to profile mapping.
func (r *Registry) Assignments() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.assignments))
	for k, v := range r.assignments {
		out[k] = v
	}
	return out
}

// SetDefault selects the profile used for unassigned instruments.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return fmt.Errorf("set default: %w: %q", ErrUnknownProfile, id)
	}
	r.defaultID = id
	return nil
}

// Default returns the profile used for unassigned instruments.
func (r *Registry) Default() *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[r.defaultID]
}

// ProfileFor returns the profile assigned to instrument, or the default.
func (r *Registry) ProfileFor(instrument string) *Profile {
	key := NormalizeInstrument(instrument)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.assignments[key]; ok {
		if p, ok := r.profiles[id]; ok {
			return p
		}
	}
	return r.profiles[r.defaultID]
}

// Resolve returns the named profile when id is set, otherwise the profile
// assigned to instrument.
func (r *Registry) Resolve(id, instrument string) (*Profile, error) {
	if id != "" {
		return r.Get(id)
	}
	return r.ProfileFor(instrument), nil
}

// profileFile is the on-disk layout of a profile file.
type profileFile struct {
	Default     string            `yaml:"default" toml:"default"`
	Assignments map[string]string `yaml:"assignments" toml:"assignments"`
	Profiles    []map[string]any  `yaml:"profiles" toml:"profiles"`
}

type codec struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	yamlCodec = codec{marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
	tomlCodec = codec{marshal: toml.Marshal, unmarshal: toml.Unmarshal}
)

// LoadFile reads profiles, assignments and the default from a YAML
// (.yaml/.yml) or TOML (.toml) file. An entry naming a base profile starts
// from a copy of it and overrides only the fields it sets. Nothing is
// registered unless the whole file is valid.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return r.load(data, yamlCodec)
	case ".toml":
		return r.load(data, tomlCodec)
	default:
		return fmt.Errorf("load profiles %s: unsupported file type", path)
	}
}

// LoadYAML registers the profiles of a YAML document.
func (r *Registry) LoadYAML(data []byte) error {
	return r.load(data, yamlCodec)
}

// LoadTOML registers the profiles of a TOML document.
func (r *Registry) LoadTOML(data []byte) error {
	return r.load(data, tomlCodec)
}

func (r *Registry) load(data []byte, c codec) error {
	var file profileFile
	if err := c.unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse profiles: %w", err)
	}

	loaded := make(map[string]*Profile)
	var order []string
	for i, entry := range file.Profiles {
		p, err := r.decodeEntry(entry, loaded, c)
		if err != nil {
			return fmt.Errorf("profiles[%d]: %w", i, err)
		}
		if _, dup := loaded[p.ID]; dup {
			return fmt.Errorf("profiles[%d]: duplicate id %q", i, p.ID)
		}
		loaded[p.ID] = p
		order = append(order, p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	known := func(id string) bool {
		if _, ok := loaded[id]; ok {
			return true
		}
		_, ok := r.profiles[id]
		return ok
	}
	for inst, id := range file.Assignments {
		if !known(id) {
			return fmt.Errorf("assignment %s: %w: %q", inst, ErrUnknownProfile, id)
		}
	}
	if file.Default != "" && !known(file.Default) {
		return fmt.Errorf("default: %w: %q", ErrUnknownProfile, file.Default)
	}

	for _, id := range order {
		r.profiles[id] = loaded[id]
	}
	for inst, id := range file.Assignments {
		r.assignments[NormalizeInstrument(inst)] = id
	}
	if file.Default != "" {
		r.defaultID = file.Default
	}
	return nil
}

func (r *Registry) decodeEntry(entry map[string]any, loaded map[string]*Profile, c codec) (*Profile, error) {
	p := &Profile{}
	if base, ok := entry["base"]; ok {
		baseID, _ := base.(string)
		bp, found := loaded[baseID]
		if !found {
			var err error
			if bp, err = r.Get(baseID); err != nil {
				return nil, fmt.Errorf("base: %w", err)
			}
		}
		p = bp.Clone()
		p.ID, p.Name, p.Description = "", "", ""
	}

	fields := make(map[string]any, len(entry))
	for k, v := range entry {
		if k != "base" {
			fields[k] = v
		}
	}
	raw, err := c.marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	if err := c.unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
