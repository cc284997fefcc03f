package geo

// Geometry is a GeoJSON geometry. Coordinates follow the GeoJSON shapes:
// Point uses []float64, LineString [][]float64, Polygon [][][]float64.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Feature is one map-displayable geometry with its property bag.
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *Geometry              `json:"geometry"`
}

// FeatureCollection aggregates the features produced by all tool calls
// within one assistant turn.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

func NewFeature(geometry *Geometry, properties map[string]interface{}) Feature {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	return Feature{
		Type:       "Feature",
		Properties: properties,
		Geometry:   geometry,
	}
}

// NewFeatureCollection always materializes the feature slice so callers can
// serialize an empty collection rather than null.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// Merge appends the features of other onto fc, preserving order.
func (fc *FeatureCollection) Merge(features []Feature) {
	fc.Features = append(fc.Features, features...)
}
