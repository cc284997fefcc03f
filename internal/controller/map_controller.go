package controller

import (
	"scoutgpt-be/internal/pkg/serverutils"
	"scoutgpt-be/pkg/arcgis"

	"github.com/gofiber/fiber/v2"
)

// IMapController proxies FeatureServer queries for the map UI so the
// browser never talks to ArcGIS directly and responses share the server
// side cache.
type IMapController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type mapController struct {
	client *arcgis.CachedClient
}

func NewMapController(client *arcgis.CachedClient) IMapController {
	return &mapController{
		client: client,
	}
}

func (c *mapController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/map/v1")
	h.Get("query", c.Query)
}

func (c *mapController) Query(ctx *fiber.Ctx) error {
	layer := ctx.Query("layer")
	if layer != arcgis.LayerParcels && layer != arcgis.LayerZoning {
		return fiber.NewError(fiber.StatusBadRequest, "layer must be parcels or zoning")
	}

	opts := arcgis.DefaultQueryOptions()
	if where := ctx.Query("where"); where != "" {
		opts.Where = where
	}
	if outFields := ctx.Query("out_fields"); outFields != "" {
		opts.OutFields = outFields
	}
	opts.ReturnGeometry = ctx.QueryBool("return_geometry", true)
	if max := ctx.QueryInt("max_records", 0); max > 0 {
		opts.MaxRecords = max
	}

	res, err := c.client.QueryLayer(ctx.Context(), layer, opts)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query layer", res))
}
