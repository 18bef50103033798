// Package store persists saved calculations.
//
// A [Calculation] wraps a computed [tile.Record] with a project name, a
// status and a creation time. Three [Store] backends are available:
//   - [MemoryStore]: in-process map, for tests and ephemeral servers
//   - [FileStore]: one JSON file per calculation, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Every backend lists calculations newest first and reports missing IDs with
// the NOT_FOUND code from pkg/errors.
package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// Status is the project state of a saved calculation.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusDraft, StatusInProgress, StatusCompleted}

// ParseStatus converts user input to a Status. Empty input means completed.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "":
		return StatusCompleted, nil
	case StatusDraft, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"invalid status %q (must be one of: draft, in-progress, completed)", s)
}

// Label returns the display form, e.g. "In Progress".
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	case StatusDraft:
		return "Draft"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Calculation is a saved tile calculation.
type Calculation struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name" bson:"name"`
	Status    Status       `json:"status" bson:"status"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	Record    *tile.Record `json:"record" bson:"record"`
}

// clone returns a deep copy of c.
func (c *Calculation) clone() *Calculation {
	cp := *c
	cp.Record = c.Record.Clone()
	return &cp
}

// New creates a completed calculation with a fresh ID. An empty name is
// replaced by a description of the room and pattern.
func New(name string, rec *tile.Record) (*Calculation, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "calculation needs a record")
	}
	if name == "" {
		name = DefaultName(rec)
	}
	return &Calculation{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusCompleted,
		CreatedAt: time.Now().UTC(),
		Record:    rec,
	}, nil
}

// DefaultName returns e.g. "5.5 x 4.2 m grid".
func DefaultName(rec *tile.Record) string {
	return strings.Join([]string{
		formatMeters(rec.Room.LengthM), "x", formatMeters(rec.Room.WidthM), "m", string(rec.Pattern),
	}, " ")
}

// ListOptions filters List. Zero values mean no filter.
type ListOptions struct {
	Limit   int
	Offset  int
	Pattern tile.Pattern
	Status  Status
}

func (o ListOptions) matches(c *Calculation) bool {
	if o.Status != "" && c.Status != o.Status {
		return false
	}
	if o.Pattern != "" && (c.Record == nil || c.Record.Pattern != o.Pattern) {
		return false
	}
	return true
}

// Store persists calculations.
type Store interface {
	// Save inserts or replaces a calculation by ID.
	Save(ctx context.Context, c *Calculation) error
	// Get returns a calculation or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Calculation, error)
	// List returns calculations newest first.
	List(ctx context.Context, opts ListOptions) ([]*Calculation, error)
	// Delete removes a calculation or returns a NOT_FOUND error.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "calculation %s not found", id)
}

// sortNewest orders by creation time descending, then by ID for stable output.
func sortNewest(calcs []*Calculation) {
	sort.SliceStable(calcs, func(i, j int) bool {
		if !calcs[i].CreatedAt.Equal(calcs[j].CreatedAt) {
			return calcs[i].CreatedAt.After(calcs[j].CreatedAt)
		}
		return calcs[i].ID < calcs[j].ID
	})
}

// page applies offset and limit to a sorted, filtered slice.
func page(calcs []*Calculation, opts ListOptions) []*Calculation {
	if opts.Offset > 0 {
		if opts.Offset >= len(calcs) {
			return []*Calculation{}
		}
		calcs = calcs[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(calcs) {
		calcs = calcs[:opts.Limit]
	}
	return calcs
}
