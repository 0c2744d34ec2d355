// Package catalog holds the surveyed stores and the retail chains they belong to.
package catalog

import "github.com/paulmach/orb"

// Store is a surveyed retail location.
type Store struct {
	ID             string  `json:"id,omitempty" yaml:"id,omitempty" doc:"Stable store identifier" example:"auchan-velizy-2"`
	Name           string  `json:"name" yaml:"name" doc:"Display label (not unique)" example:"Auchan Vélizy"`
	Lat            float64 `json:"lat" yaml:"lat" minimum:"-90" maximum:"90" doc:"Latitude" example:"48.78"`
	Lng            float64 `json:"lng" yaml:"lng" minimum:"-180" maximum:"180" doc:"Longitude" example:"2.22"`
	Category       string  `json:"category" yaml:"category" doc:"Enseigne identifier" example:"auchan"`
	Address        string  `json:"address" yaml:"address" doc:"Postal address"`
	HasCageEggs    bool    `json:"hasCageEggs" yaml:"hasCageEggs" doc:"Whether cage eggs were found on sale"`
	ReferenceCount int     `json:"referenceCount" yaml:"referenceCount" minimum:"0" doc:"Distinct cage-egg product references found"`
	PhotoURL       string  `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty" doc:"Supporting evidence image"`
}

// Point returns the store position as lon/lat.
func (s Store) Point() orb.Point {
	return orb.Point{s.Lng, s.Lat}
}

// Enseigne is a retail chain.
type Enseigne struct {
	ID          string `json:"id" yaml:"id" doc:"Chain identifier used as filter key" example:"auchan"`
	DisplayName string `json:"displayName" yaml:"displayName" doc:"Chain display name" example:"Auchan"`
	LogoAsset   string `json:"logoAsset,omitempty" yaml:"logoAsset,omitempty" doc:"Logo asset path"`
}

// Rejection records a store dropped while building a catalog.
type Rejection struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Document is the on-disk shape shared by the YAML and JSON formats.
type Document struct {
	Enseignes []Enseigne `json:"enseignes" yaml:"enseignes"`
	Stores    []Store    `json:"stores" yaml:"stores"`
}
