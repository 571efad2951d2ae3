package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	KeyID        = "id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
	KeyClass     = "__class__"

	// BaseClass is the class name of a model constructed without WithClass.
	BaseClass = "BaseModel"
)

// TimeFormat is the layout used when rendering timestamps. Parsing also
// accepts the same layout without the fractional seconds.
const (
	TimeFormat      = "2006-01-02T15:04:05.000000"
	timeFormatWhole = "2006-01-02T15:04:05"
)

var (
	ErrInvalidValue      = errors.New("model: invalid value")
	ErrReservedAttribute = errors.New("model: reserved attribute")
	ErrDetached          = errors.New("model: no storage attached")
	ErrUnknownClass      = errors.New("model: unknown class")
)

// Storage is the persistence collaborator notified on Save.
type Storage interface {
	// Register adds or replaces m in the registry. Safe to call repeatedly.
	Register(m *Model)
	// Persist flushes the whole registry to durable storage.
	Persist(ctx context.Context) error
}

type Model struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	class   string
	attrs   map[string]any
	storage Storage
	now     func() time.Time
}

type Option func(*Model)

// WithClass sets the concrete class name reported by String and ToMap.
func WithClass(name string) Option {
	return func(m *Model) {
		if name != "" {
			m.class = name
		}
	}
}

func WithStorage(s Storage) Option {
	return func(m *Model) { m.storage = s }
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

func newModel(opts []Option) *Model {
	m := &Model{
		class: BaseClass,
		attrs: make(map[string]any),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// New creates a model with a fresh id and both timestamps set to now.
func New(opts ...Option) *Model {
	m := newModel(opts)
	m.ID = uuid.NewString()
	m.CreatedAt = m.clock()
	m.UpdatedAt = m.CreatedAt
	return m
}

// FromMap creates a model from a map such as one produced by ToMap.
// The __class__ key is ignored; every other key is assigned. A missing
// id or timestamp is generated as in New.
func FromMap(data map[string]any, opts ...Option) (*Model, error) {
	m := newModel(opts)

	_, hasID := data[KeyID]
	for k, v := range data {
		switch k {
		case KeyClass:
		case KeyID:
			m.ID = toString(v)
		case KeyCreatedAt:
			t, err := toTime(k, v)
			if err != nil {
				return nil, err
			}
			m.CreatedAt = t
		case KeyUpdatedAt:
			t, err := toTime(k, v)
			if err != nil {
				return nil, err
			}
			m.UpdatedAt = t
		default:
			m.attrs[k] = v
		}
	}

	if !hasID {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.clock()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	return m, nil
}

func (m *Model) Class() string {
	return m.class
}

// Key returns the registry key "<Class>.<id>".
func (m *Model) Key() string {
	return m.class + "." + m.ID
}

// Attach sets the storage notified by Save.
func (m *Model) Attach(s Storage) {
	m.storage = s
}

// Set assigns an extra attribute. The identity and timestamp keys are
// managed by the model itself and cannot be set.
func (m *Model) Set(name string, value any) error {
	if IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedAttribute, name)
	}
	m.attrs[name] = value
	return nil
}

// Get returns an extra attribute, falling back to the class default.
func (m *Model) Get(name string) (any, bool) {
	if v, ok := m.attrs[name]; ok {
		return v, true
	}
	if c, ok := LookupClass(m.class); ok {
		if v, ok := c.Defaults[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Attributes returns a copy of the extra attributes.
func (m *Model) Attributes() map[string]any {
	out := make(map[string]any, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// Save refreshes UpdatedAt and persists the model through its storage.
func (m *Model) Save(ctx context.Context) error {
	if m.storage == nil {
		return fmt.Errorf("%w: save %s", ErrDetached, m.Key())
	}

	// UpdatedAt must end up after both its previous value and CreatedAt,
	// which FromMap may have loaded out of order.
	floor := m.UpdatedAt
	if m.CreatedAt.After(floor) {
		floor = m.CreatedAt
	}
	now := m.clock()
	if !now.After(floor) {
		now = floor.Add(time.Microsecond)
	}
	m.UpdatedAt = now

	m.storage.Register(m)
	return m.storage.Persist(ctx)
}

// ToMap returns every attribute plus the __class__ discriminator, with
// timestamps rendered as strings.
func (m *Model) ToMap() map[string]any {
	out := m.fields()
	out[KeyClass] = m.class
	return out
}

func (m *Model) fields() map[string]any {
	out := make(map[string]any, len(m.attrs)+3)
	for k, v := range m.attrs {
		out[k] = v
	}
	out[KeyID] = m.ID
	out[KeyCreatedAt] = FormatTime(m.CreatedAt)
	out[KeyUpdatedAt] = FormatTime(m.UpdatedAt)
	return out
}

func (m *Model) String() string {
	fields := m.fields()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %s", k, formatValue(fields[k]))
	}
	b.WriteByte('}')

	return fmt.Sprintf("[%s] (%s) %s", m.class, m.ID, b.String())
}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

func (m *Model) UnmarshalJSON(b []byte) error {
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return err
	}

	opts := []Option{WithStorage(m.storage)}
	if class, ok := data[KeyClass].(string); ok {
		opts = append(opts, WithClass(class))
	}

	parsed, err := FromMap(data, opts...)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

func (m *Model) clock() time.Time {
	// Local wall clock at microsecond resolution so that rendered and
	// parsed timestamps compare equal.
	return m.now().Truncate(time.Microsecond)
}

// IsReserved reports whether name is managed by the model.
func IsReserved(name string) bool {
	switch name {
	case KeyID, KeyCreatedAt, KeyUpdatedAt, KeyClass:
		return true
	}
	return false
}

// FormatTime renders t like an ISO-8601 timestamp without zone, dropping
// the fraction when it is zero.
func FormatTime(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format(timeFormatWhole)
	}
	return t.Format(TimeFormat)
}

// ParseTime parses a timestamp rendered by FormatTime. The optional
// fraction is a dot followed by at most six digits.
func ParseTime(s string) (time.Time, error) {
	if len(s) > len(timeFormatWhole) {
		frac := s[len(timeFormatWhole):]
		if frac[0] != '.' || len(frac) > 7 {
			return time.Time{}, fmt.Errorf("%w: parse time %q: fraction must be .ffffff", ErrInvalidValue, s)
		}
	}

	t, err := time.ParseInLocation(timeFormatWhole, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse time %q: %v", ErrInvalidValue, s, err)
	}
	return t, nil
}

func toTime(key string, v any) (time.Time, error) {
	switch tv := v.(type) {
	case string:
		return ParseTime(tv)
	case time.Time:
		return tv, nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s must be a timestamp string, got %T", ErrInvalidValue, key, v)
	}
}

func toString(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func formatValue(v any) string {
	switch tv := v.(type) {
	case string:
		return fmt.Sprintf("%q", tv)
	case nil:
		return "null"
	case json.Number:
		return tv.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
