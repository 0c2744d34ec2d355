package icon

import "fmt"

// Palette is the campaign color set shared by markers and popups.
type Palette struct {
	CageFill  string `json:"cageFill" doc:"Fill of cage-egg markers"`
	CageShade string `json:"cageShade" doc:"Halo of cage-egg markers"`
	FreeFill  string `json:"freeFill" doc:"Fill of cage-free markers"`
	FreeShade string `json:"freeShade" doc:"Halo of cage-free markers"`
	Ink       string `json:"ink" doc:"Neutral dark stroke"`
}

// DefaultPalette returns the campaign colors.
func DefaultPalette() Palette {
	return Palette{
		CageFill:  "#e4032e",
		CageShade: "#8c001b",
		FreeFill:  "#1fa34a",
		FreeShade: "#0d5e29",
		Ink:       "#1d1d1b",
	}
}

// Fill returns the fill color for an outcome.
func (p Palette) Fill(o Outcome) string {
	if o == Cage {
		return p.CageFill
	}
	return p.FreeFill
}

// Shade returns the halo color for an outcome.
func (p Palette) Shade(o Outcome) string {
	if o == Cage {
		return p.CageShade
	}
	return p.FreeShade
}

func (p Palette) canonical() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", p.CageFill, p.CageShade, p.FreeFill, p.FreeShade, p.Ink)
}
