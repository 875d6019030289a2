package candidates

import (
	"errors"
	"fmt"

	"applygen-backend/internal/catalog"
	"applygen-backend/resume/model"
)

var (
	// ErrEmptyPool is returned when there are no candidates to select from.
	ErrEmptyPool = errors.New("candidate pool is empty")
	// ErrInvalidCount is returned for non-positive requested counts.
	ErrInvalidCount = errors.New("requested count must be positive")
)

// Group is an origin balance group.
type Group string

const (
	GroupMajority  Group = "majority"
	GroupMinorityA Group = "minorityA"
	GroupMinorityB Group = "minorityB"
)

// Cell is one gender x origin-group balance bucket.
type Cell struct {
	Gender string
	Group  Group
}

func (c Cell) String() string {
	return fmt.Sprintf("%s/%s", c.Gender, c.Group)
}

// Cells lists the balance cells in selection order.
var Cells = []Cell{
	{Gender: model.GenderFemale, Group: GroupMajority},
	{Gender: model.GenderFemale, Group: GroupMinorityA},
	{Gender: model.GenderFemale, Group: GroupMinorityB},
	{Gender: model.GenderMale, Group: GroupMajority},
	{Gender: model.GenderMale, Group: GroupMinorityA},
	{Gender: model.GenderMale, Group: GroupMinorityB},
}

// Selection is the outcome of one balanced draw.
type Selection struct {
	Cells    map[Cell][]model.Candidate
	Backfill []model.Candidate
}

// Candidates returns every selected candidate, cells first in Cells order, then backfill.
func (s Selection) Candidates() []model.Candidate {
	var out []model.Candidate
	for _, cell := range Cells {
		out = append(out, s.Cells[cell]...)
	}
	return append(out, s.Backfill...)
}

// Len returns the number of selected candidates.
func (s Selection) Len() int {
	n := len(s.Backfill)
	for _, picked := range s.Cells {
		n += len(picked)
	}
	return n
}

// Selector draws balanced batches from a fixed candidate pool.
type Selector struct {
	pool   []model.Candidate
	groups map[string]Group
	src    Source
}

// NewSelector builds a selector over pool. Origins not listed in groups
// never fill a balance cell but remain eligible for backfill.
func NewSelector(pool []model.Candidate, groups catalog.OriginGroups, src Source) *Selector {
	byOrigin := make(map[string]Group)
	for _, o := range groups.Majority {
		byOrigin[o] = GroupMajority
	}
	for _, o := range groups.MinorityA {
		byOrigin[o] = GroupMinorityA
	}
	for _, o := range groups.MinorityB {
		byOrigin[o] = GroupMinorityB
	}
	return &Selector{
		pool:   append([]model.Candidate(nil), pool...),
		groups: byOrigin,
		src:    src,
	}
}

// NewCatalogSelector builds a selector over the catalog's identity pool.
func NewCatalogSelector(c *catalog.Catalog, src Source) *Selector {
	return NewSelector(c.Candidates(), c.OriginGroups(), src)
}

// PoolSize returns the number of candidates in the pool.
func (s *Selector) PoolSize() int {
	return len(s.pool)
}

// Select returns min(n, pool size) distinct candidates. Each balance cell
// receives at most n/6 candidates; the shortfall is filled uniformly from
// the remaining pool.
func (s *Selector) Select(n int) (Selection, error) {
	if len(s.pool) == 0 {
		return Selection{}, ErrEmptyPool
	}
	if n <= 0 {
		return Selection{}, ErrInvalidCount
	}
	if n > len(s.pool) {
		n = len(s.pool)
	}
	perCell := n / len(Cells)

	sel := Selection{Cells: make(map[Cell][]model.Candidate, len(Cells))}
	taken := make(map[int]bool, n)
	if perCell > 0 {
		for _, cell := range Cells {
			var idx []int
			for i, c := range s.pool {
				if !taken[i] && c.Gender == cell.Gender && s.groups[c.Origin] == cell.Group {
					idx = append(idx, i)
				}
			}
			for _, i := range Sample(s.src, idx, perCell) {
				taken[i] = true
				sel.Cells[cell] = append(sel.Cells[cell], s.pool[i].Clone())
			}
		}
	}

	var remaining []int
	for i := range s.pool {
		if !taken[i] {
			remaining = append(remaining, i)
		}
	}
	for _, i := range Sample(s.src, remaining, n-len(taken)) {
		sel.Backfill = append(sel.Backfill, s.pool[i].Clone())
	}
	return sel, nil
}
