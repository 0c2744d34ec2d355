package mapview

import (
	"github.com/joeblew999/storemap/internal/catalog"
	"github.com/joeblew999/storemap/internal/icon"
)

// Labels are the user-facing popup texts.
type Labels struct {
	Cage       string `json:"cage"`
	Free       string `json:"free"`
	References string `json:"references"`
	Photo      string `json:"photo"`
}

// DefaultLabels returns the French campaign wording.
func DefaultLabels() Labels {
	return Labels{
		Cage:       "Vend des œufs de poules en cage",
		Free:       "Ne vend pas d'œufs de poules en cage",
		References: "références relevées",
		Photo:      "Voir la photo",
	}
}

// Popup is the detail card of a store.
type Popup struct {
	Name           string       `json:"name"`
	Address        string       `json:"address"`
	Outcome        icon.Outcome `json:"outcome"`
	Color          string       `json:"color"`
	Label          string       `json:"label"`
	ReferenceCount int          `json:"referenceCount,omitempty"`
	ReferenceLabel string       `json:"referenceLabel,omitempty"`
	PhotoURL       string       `json:"photoUrl,omitempty"`
	PhotoLabel     string       `json:"photoLabel,omitempty"`
}

// Popup builds the detail card of st. The status color is the marker fill
// of the same outcome.
func (s *Surface) Popup(st catalog.Store) Popup {
	o := icon.OutcomeOf(st.HasCageEggs)
	p := Popup{
		Name:    st.Name,
		Address: st.Address,
		Outcome: o,
		Color:   s.palette.Fill(o),
		Label:   s.labels.Free,
	}
	if o == icon.Cage {
		p.Label = s.labels.Cage
	}
	if st.ReferenceCount > 0 {
		p.ReferenceCount = st.ReferenceCount
		p.ReferenceLabel = s.labels.References
	}
	if st.PhotoURL != "" {
		p.PhotoURL = st.PhotoURL
		p.PhotoLabel = s.labels.Photo
	}
	return p
}

// PopupFor builds the detail card of the store with the given id.
func (s *Surface) PopupFor(id string) (Popup, bool) {
	st, ok := s.state.Catalog().Store(id)
	if !ok {
		return Popup{}, false
	}
	return s.Popup(st), true
}
