package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON decodes a FeatureCollection of Point features carrying store
// properties. Chains are read from the "enseignes" foreign member.
// Features without a Point geometry are rejected like malformed coordinates.
func ParseGeoJSON(data []byte) (*Catalog, []Rejection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing geojson catalog: %w", err)
	}

	var enseignes []Enseigne
	if raw, ok := fc.ExtraMembers["enseignes"]; ok {
		buf, err := json.Marshal(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("reading enseignes member: %w", err)
		}
		if err := json.Unmarshal(buf, &enseignes); err != nil {
			return nil, nil, fmt.Errorf("parsing enseignes member: %w", err)
		}
	}

	var rejected []Rejection
	stores := make([]Store, 0, len(fc.Features))
	featureIndex := make([]int, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			rejected = append(rejected, Rejection{
				Index:  i,
				Name:   f.Properties.MustString("name", ""),
				Reason: "geometry is not a point",
			})
			continue
		}
		id, _ := f.ID.(string)
		featureIndex = append(featureIndex, i)
		stores = append(stores, Store{
			ID:             id,
			Name:           f.Properties.MustString("name", ""),
			Lat:            p.Lat(),
			Lng:            p.Lon(),
			Category:       f.Properties.MustString("category", ""),
			Address:        f.Properties.MustString("address", ""),
			HasCageEggs:    f.Properties.MustBool("hasCageEggs", false),
			ReferenceCount: f.Properties.MustInt("referenceCount", 0),
			PhotoURL:       f.Properties.MustString("photoUrl", ""),
		})
	}

	c, more, err := New(enseignes, stores)
	if err != nil {
		return nil, nil, err
	}
	for i := range more {
		more[i].Index = featureIndex[more[i].Index]
	}
	return c, append(rejected, more...), nil
}

// FeatureCollection exports stores as GeoJSON point features.
func FeatureCollection(stores []Store) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range stores {
		f := geojson.NewFeature(s.Point())
		f.ID = s.ID
		f.Properties["name"] = s.Name
		f.Properties["category"] = s.Category
		f.Properties["address"] = s.Address
		f.Properties["hasCageEggs"] = s.HasCageEggs
		f.Properties["referenceCount"] = s.ReferenceCount
		if s.PhotoURL != "" {
			f.Properties["photoUrl"] = s.PhotoURL
		}
		fc.Append(f)
	}
	return fc
}
