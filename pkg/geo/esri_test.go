package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestFromEsriPoint(t *testing.T) {
	g := FromEsri(&EsriGeometry{X: ptr(-97.74), Y: ptr(30.27)})
	require.NotNil(t, g)
	assert.Equal(t, "Point", g.Type)
	assert.Equal(t, []float64{-97.74, 30.27}, g.Coordinates)
}

func TestFromEsriPolygon(t *testing.T) {
	rings := [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	g := FromEsri(&EsriGeometry{Rings: rings})
	require.NotNil(t, g)
	assert.Equal(t, "Polygon", g.Type)
	assert.Equal(t, rings, g.Coordinates)
}

func TestFromEsriPolyline(t *testing.T) {
	paths := [][][]float64{{{0, 0}, {2, 2}}, {{3, 3}, {4, 4}}}
	g := FromEsri(&EsriGeometry{Paths: paths})
	require.NotNil(t, g)
	assert.Equal(t, "LineString", g.Type)
	assert.Equal(t, paths[0], g.Coordinates)
}

func TestFromEsriNilAndUnknown(t *testing.T) {
	assert.Nil(t, FromEsri(nil))

	g := FromEsri(&EsriGeometry{})
	require.NotNil(t, g)
	assert.Equal(t, "Point", g.Type)
}

func TestFeatureCollectionMerge(t *testing.T) {
	fc := NewFeatureCollection(nil)
	assert.NotNil(t, fc.Features)
	assert.Equal(t, "FeatureCollection", fc.Type)

	fc.Merge([]Feature{NewFeature(nil, map[string]interface{}{"parcel_id": "12-345"})})
	fc.Merge([]Feature{NewFeature(nil, nil)})
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "12-345", fc.Features[0].Properties["parcel_id"])
	assert.NotNil(t, fc.Features[1].Properties)
}
