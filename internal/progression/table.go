package progression

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-estate/contracts"
)

var (
	// ErrPathRequired indicates a table was built without any linear path statuses.
	ErrPathRequired = errors.New("progression: linear path requires at least one status")
	// ErrStatusRequired indicates an empty status code was supplied.
	ErrStatusRequired = errors.New("progression: status code required")
	// ErrDuplicateStatus indicates a status appears more than once in the table.
	ErrDuplicateStatus = errors.New("progression: duplicate status")
)

// Color is a display color in CSS hex notation.
type Color string

// NeutralColor is used for statuses without a configured color.
const NeutralColor Color = "#BDBDBD"

// StatusInfo carries the display attributes of a status.
type StatusInfo struct {
	Label string
	Color Color
}

// Table is the immutable status configuration consumed by the Resolver: the
// ordered linear path, the terminal statuses and their display attributes.
type Table struct {
	path     []contracts.Status
	index    map[contracts.Status]int
	terminal []contracts.Status
	isTerm   map[contracts.Status]struct{}
	info     map[contracts.Status]StatusInfo
}

// NewTable validates and builds a table. Path and terminal statuses must be
// disjoint and free of duplicates.
func NewTable(path, terminal []contracts.Status, info map[contracts.Status]StatusInfo) (*Table, error) {
	if len(path) == 0 {
		return nil, ErrPathRequired
	}

	t := &Table{
		path:     make([]contracts.Status, 0, len(path)),
		index:    make(map[contracts.Status]int, len(path)),
		terminal: make([]contracts.Status, 0, len(terminal)),
		isTerm:   make(map[contracts.Status]struct{}, len(terminal)),
		info:     make(map[contracts.Status]StatusInfo, len(info)),
	}

	for idx, status := range path {
		if status == "" {
			return nil, fmt.Errorf("%w at path index %d", ErrStatusRequired, idx)
		}
		if _, exists := t.index[status]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStatus, status)
		}
		t.index[status] = len(t.path)
		t.path = append(t.path, status)
	}

	for idx, status := range terminal {
		if status == "" {
			return nil, fmt.Errorf("%w at terminal index %d", ErrStatusRequired, idx)
		}
		if _, onPath := t.index[status]; onPath {
			return nil, fmt.Errorf("%w: %s is both on the path and terminal", ErrDuplicateStatus, status)
		}
		if _, exists := t.isTerm[status]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStatus, status)
		}
		t.isTerm[status] = struct{}{}
		t.terminal = append(t.terminal, status)
	}

	for status, attrs := range info {
		t.info[status] = attrs
	}

	return t, nil
}

// DefaultTable returns the brokerage contract workflow.
func DefaultTable() *Table {
	table, err := NewTable(
		[]contracts.Status{
			contracts.StatusListed,
			contracts.StatusNegotiating,
			contracts.StatusIntentSigned,
			contracts.StatusContracted,
			contracts.StatusInProgress,
			contracts.StatusPaidComplete,
			contracts.StatusRegistered,
			contracts.StatusMovedIn,
			contracts.StatusClosed,
		},
		[]contracts.Status{
			contracts.StatusCancelled,
			contracts.StatusTerminated,
		},
		DefaultStatusInfo(),
	)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultStatusInfo returns the stock labels and colors for every known status.
func DefaultStatusInfo() map[contracts.Status]StatusInfo {
	return map[contracts.Status]StatusInfo{
		contracts.StatusListed:       {Label: "Listed", Color: "#90A4AE"},
		contracts.StatusNegotiating:  {Label: "Negotiating", Color: "#FFB74D"},
		contracts.StatusIntentSigned: {Label: "Intent signed", Color: "#FFD54F"},
		contracts.StatusContracted:   {Label: "Contracted", Color: "#4FC3F7"},
		contracts.StatusInProgress:   {Label: "In progress", Color: "#42A5F5"},
		contracts.StatusPaidComplete: {Label: "Paid in full", Color: "#26A69A"},
		contracts.StatusRegistered:   {Label: "Registered", Color: "#66BB6A"},
		contracts.StatusMovedIn:      {Label: "Moved in", Color: "#9CCC65"},
		contracts.StatusClosed:       {Label: "Closed", Color: "#616161"},
		contracts.StatusCancelled:    {Label: "Cancelled", Color: "#E57373"},
		contracts.StatusTerminated:   {Label: "Terminated", Color: "#C62828"},
	}
}

// Path returns a copy of the linear path.
func (t *Table) Path() []contracts.Status {
	out := make([]contracts.Status, len(t.path))
	copy(out, t.path)
	return out
}

// Terminal returns a copy of the terminal statuses in declaration order.
func (t *Table) Terminal() []contracts.Status {
	out := make([]contracts.Status, len(t.terminal))
	copy(out, t.terminal)
	return out
}

// Len is the number of statuses on the linear path.
func (t *Table) Len() int {
	return len(t.path)
}

// Info returns the display attributes configured for status.
func (t *Table) Info(status contracts.Status) (StatusInfo, bool) {
	info, ok := t.info[status]
	return info, ok
}

func (t *Table) pathIndex(status contracts.Status) (int, bool) {
	idx, ok := t.index[status]
	return idx, ok
}

func (t *Table) isTerminal(status contracts.Status) bool {
	_, ok := t.isTerm[status]
	return ok
}

func (t *Table) known(status contracts.Status) bool {
	if _, ok := t.index[status]; ok {
		return true
	}
	return t.isTerminal(status)
}
