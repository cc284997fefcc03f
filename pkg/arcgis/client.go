package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"scoutgpt-be/pkg/geo"
)

// Feature is one row from a FeatureServer layer: attributes plus optional
// geometry in Esri JSON form.
type Feature struct {
	Attributes map[string]interface{} `json:"attributes"`
	Geometry   *geo.EsriGeometry      `json:"geometry,omitempty"`
}

// QueryResponse is the parsed result of a layer query.
type QueryResponse struct {
	Layer      int                    `json:"-"`
	LayerName  string                 `json:"layer"`
	Features   []Feature              `json:"features"`
	TotalCount int                    `json:"total_count"`
	GeoJSON    *geo.FeatureCollection `json:"geojson,omitempty"`
}

// QueryOptions mirror the FeatureServer query parameters the assistant's
// tools expose.
type QueryOptions struct {
	Where          string
	OutFields      string
	ReturnGeometry bool
	MaxRecords     int
}

func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Where:          "1=1",
		OutFields:      "*",
		ReturnGeometry: true,
		MaxRecords:     100,
	}
}

// Layer names the assistant's tools expose.
const (
	LayerParcels = "parcels"
	LayerZoning  = "zoning"
)

// Client queries ArcGIS FeatureServer layers. Layer names (parcels, zoning)
// map to configured layer URLs; an unknown name is treated as a full URL so
// callers can pass ad-hoc layers.
type Client struct {
	layerURLs map[string]string
	httpc     *http.Client
}

func NewClient(layerURLs map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		layerURLs: layerURLs,
		httpc:     &http.Client{Timeout: timeout},
	}
}

type rawQueryResponse struct {
	Features []struct {
		Attributes map[string]interface{} `json:"attributes"`
		Geometry   *geo.EsriGeometry      `json:"geometry"`
	} `json:"features"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// QueryLayer runs a FeatureServer query and converts results to both Esri
// attribute rows and a GeoJSON collection for map display.
func (c *Client) QueryLayer(ctx context.Context, layer string, opts QueryOptions) (*QueryResponse, error) {
	layerURL, ok := c.layerURLs[layer]
	if !ok {
		layerURL = layer
	}
	if layerURL == "" {
		return nil, fmt.Errorf("unknown layer %q: configure its URL or pass a full FeatureServer URL", layer)
	}

	if opts.Where == "" {
		opts.Where = "1=1"
	}
	if opts.OutFields == "" {
		opts.OutFields = "*"
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = 100
	}

	params := url.Values{}
	params.Set("where", opts.Where)
	params.Set("outFields", opts.OutFields)
	params.Set("returnGeometry", strconv.FormatBool(opts.ReturnGeometry))
	params.Set("f", "json")
	params.Set("resultRecordCount", strconv.Itoa(opts.MaxRecords))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, layerURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arcgis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arcgis api error (status %d): %s", resp.StatusCode, string(body))
	}

	var raw rawQueryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode arcgis response: %w", err)
	}
	if raw.Error != nil {
		return nil, fmt.Errorf("arcgis api error: %s", raw.Error.Message)
	}

	out := &QueryResponse{
		LayerName: layer,
		Features:  make([]Feature, 0, len(raw.Features)),
	}
	var geoFeatures []geo.Feature
	for _, f := range raw.Features {
		feat := Feature{Attributes: f.Attributes}
		if opts.ReturnGeometry {
			feat.Geometry = f.Geometry
			if f.Geometry != nil {
				geoFeatures = append(geoFeatures, geo.NewFeature(geo.FromEsri(f.Geometry), f.Attributes))
			}
		}
		out.Features = append(out.Features, feat)
	}
	out.TotalCount = len(out.Features)

	if opts.ReturnGeometry {
		fc := geo.NewFeatureCollection(geoFeatures)
		out.GeoJSON = &fc
	}

	return out, nil
}

// ParcelByAddress looks up a single parcel by street address.
func (c *Client) ParcelByAddress(ctx context.Context, address, city string) (*Feature, error) {
	where := fmt.Sprintf("ADDRESS LIKE '%%%s%%'", address)
	if city != "" {
		where += fmt.Sprintf(" AND CITY = '%s'", city)
	}

	opts := DefaultQueryOptions()
	opts.Where = where
	opts.MaxRecords = 1

	resp, err := c.QueryLayer(ctx, "parcels", opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}
	return &resp.Features[0], nil
}

// ZoningByParcelID looks up the zoning record for one parcel.
func (c *Client) ZoningByParcelID(ctx context.Context, parcelID string) (*Feature, error) {
	opts := DefaultQueryOptions()
	opts.Where = fmt.Sprintf("PARCEL_ID = '%s'", parcelID)
	opts.MaxRecords = 1

	resp, err := c.QueryLayer(ctx, "zoning", opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}
	return &resp.Features[0], nil
}
