package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidEnseigne is returned when the chain list itself is unusable.
var ErrInvalidEnseigne = errors.New("invalid enseigne")

// Catalog is an ordered, read-only set of stores and chains.
// Every store references an existing enseigne and has usable coordinates.
type Catalog struct {
	enseignes []Enseigne
	stores    []Store
	byChain   map[string]int
	byStore   map[string]int
}

// New validates the records and builds a catalog. Stores that cannot be
// rendered are dropped and reported as rejections; a broken chain list is
// an error.
func New(enseignes []Enseigne, stores []Store) (*Catalog, []Rejection, error) {
	c := &Catalog{
		enseignes: make([]Enseigne, 0, len(enseignes)),
		stores:    make([]Store, 0, len(stores)),
		byChain:   make(map[string]int, len(enseignes)),
		byStore:   make(map[string]int, len(stores)),
	}

	for i, e := range enseignes {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			return nil, nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidEnseigne, i)
		}
		if _, dup := c.byChain[e.ID]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidEnseigne, e.ID)
		}
		if e.DisplayName == "" {
			e.DisplayName = e.ID
		}
		c.byChain[e.ID] = len(c.enseignes)
		c.enseignes = append(c.enseignes, e)
	}

	var rejected []Rejection
	reject := func(i int, s Store, reason string) {
		rejected = append(rejected, Rejection{Index: i, Name: s.Name, Reason: reason})
	}

	for i, s := range stores {
		s.Category = strings.TrimSpace(s.Category)
		if reason := coordinateProblem(s.Lat, s.Lng); reason != "" {
			reject(i, s, reason)
			continue
		}
		if _, ok := c.byChain[s.Category]; !ok {
			reject(i, s, fmt.Sprintf("unknown category %q", s.Category))
			continue
		}
		if s.ReferenceCount < 0 {
			reject(i, s, "negative reference count")
			continue
		}
		if s.ID == "" {
			s.ID = deriveID(s, i)
		}
		if _, dup := c.byStore[s.ID]; dup {
			reject(i, s, fmt.Sprintf("duplicate id %q", s.ID))
			continue
		}
		c.byStore[s.ID] = len(c.stores)
		c.stores = append(c.stores, s)
	}

	return c, rejected, nil
}

// Stores returns the stores in catalog order. The slice must not be modified.
func (c *Catalog) Stores() []Store { return c.stores }

// Enseignes returns the chains in catalog order. The slice must not be modified.
func (c *Catalog) Enseignes() []Enseigne { return c.enseignes }

// Len returns the number of stores.
func (c *Catalog) Len() int { return len(c.stores) }

// Enseigne looks up a chain by id.
func (c *Catalog) Enseigne(id string) (Enseigne, bool) {
	i, ok := c.byChain[id]
	if !ok {
		return Enseigne{}, false
	}
	return c.enseignes[i], true
}

// Store looks up a store by id.
func (c *Catalog) Store(id string) (Store, bool) {
	i, ok := c.byStore[id]
	if !ok {
		return Store{}, false
	}
	return c.stores[i], true
}

func coordinateProblem(lat, lng float64) string {
	switch {
	case math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0):
		return "coordinates are not finite"
	case lat < -90 || lat > 90:
		return "latitude out of range"
	case lng < -180 || lng > 180:
		return "longitude out of range"
	case lat == 0 && lng == 0:
		return "missing coordinates"
	}
	return ""
}

// deriveID creates a URL-safe id from the category, the name and the
// record position, since names repeat across a chain.
func deriveID(s Store, index int) string {
	id := strings.ToLower(s.Category + "-" + s.Name)
	var result strings.Builder
	lastDash := false
	for _, r := range id {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			result.WriteRune(r)
			lastDash = false
		case !lastDash:
			result.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(result.String(), "-") + "-" + strconv.Itoa(index)
}
