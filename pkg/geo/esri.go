package geo

// EsriGeometry is the geometry shape returned by ArcGIS FeatureServer
// queries (f=json). Exactly one of the shape fields is populated.
type EsriGeometry struct {
	X     *float64      `json:"x,omitempty"`
	Y     *float64      `json:"y,omitempty"`
	Rings [][][]float64 `json:"rings,omitempty"`
	Paths [][][]float64 `json:"paths,omitempty"`
}

// FromEsri converts an Esri JSON geometry to GeoJSON. Unknown shapes map to
// a zero point rather than failing the whole feature set.
func FromEsri(esri *EsriGeometry) *Geometry {
	if esri == nil {
		return nil
	}
	switch {
	case esri.X != nil && esri.Y != nil:
		return &Geometry{
			Type:        "Point",
			Coordinates: []float64{*esri.X, *esri.Y},
		}
	case len(esri.Rings) > 0:
		return &Geometry{
			Type:        "Polygon",
			Coordinates: esri.Rings,
		}
	case len(esri.Paths) > 0:
		return &Geometry{
			Type:        "LineString",
			Coordinates: esri.Paths[0],
		}
	default:
		return &Geometry{
			Type:        "Point",
			Coordinates: []float64{0, 0},
		}
	}
}
