package tools

import (
	"context"
	"fmt"

	"scoutgpt-be/pkg/arcgis"
)

// ArcGISQuerier is the subset of the ArcGIS client the tool needs. Both
// the plain and the cached client satisfy it.
type ArcGISQuerier interface {
	QueryLayer(ctx context.Context, layer string, opts arcgis.QueryOptions) (*arcgis.QueryResponse, error)
}

// QueryArcGISTool lets the model pull parcel and zoning records from the
// configured GIS layers. Geometry comes back as GeoJSON for the map view.
type QueryArcGISTool struct {
	client ArcGISQuerier
}

func NewQueryArcGISTool(client ArcGISQuerier) *QueryArcGISTool {
	return &QueryArcGISTool{client: client}
}

func (t *QueryArcGISTool) Name() string {
	return "query_arcgis"
}

func (t *QueryArcGISTool) Description() string {
	return "Query GIS layers for property data. Use the parcels layer for ownership, addresses and lot attributes, and the zoning layer for zoning districts and land use codes. Supports SQL-style where clauses against layer fields."
}

func (t *QueryArcGISTool) Schema() Schema {
	return Schema{
		Properties: map[string]Property{
			"layer": {
				Type:        "string",
				Description: "Which GIS layer to query",
				Enum:        []string{"parcels", "zoning"},
			},
			"where": {
				Type:        "string",
				Description: "SQL-style filter, e.g. PARCEL_ID = '12345'",
				Default:     "1=1",
			},
			"return_geometry": {
				Type:        "boolean",
				Description: "Include feature geometry for map display",
				Default:     true,
			},
			"max_records": {
				Type:        "integer",
				Description: "Maximum number of features to return",
				Default:     float64(100),
			},
		},
		Required: []string{"layer"},
	}
}

func (t *QueryArcGISTool) Execute(ctx context.Context, input map[string]interface{}) (*Result, error) {
	layer, _ := input["layer"].(string)
	where, _ := input["where"].(string)
	returnGeometry, ok := input["return_geometry"].(bool)
	if !ok {
		returnGeometry = true
	}

	opts := arcgis.DefaultQueryOptions()
	opts.Where = where
	opts.ReturnGeometry = returnGeometry
	opts.MaxRecords = intArg(input, "max_records", opts.MaxRecords)

	resp, err := t.client.QueryLayer(ctx, layer, opts)
	if err != nil {
		return nil, fmt.Errorf("arcgis query failed: %w", err)
	}

	attributes := make([]map[string]interface{}, 0, len(resp.Features))
	for _, f := range resp.Features {
		attributes = append(attributes, f.Attributes)
	}

	return &Result{
		Payload: map[string]interface{}{
			"layer":       layer,
			"features":    attributes,
			"total_count": resp.TotalCount,
		},
		Geometry: resp.GeoJSON,
	}, nil
}
