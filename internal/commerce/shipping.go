package commerce

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const flatRateMethod = "flat_rate"

// ShippingZones lists configured shipping zones.
func (c *Client) ShippingZones(ctx context.Context) ([]ShippingZone, error) {
	var zones []ShippingZone
	if _, err := c.do(ctx, http.MethodGet, []string{"shipping", "zones"}, nil, nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// ShippingMethods lists the methods configured for a zone.
func (c *Client) ShippingMethods(ctx context.Context, zoneID int64) ([]ShippingMethod, error) {
	var methods []ShippingMethod
	if _, err := c.do(ctx, http.MethodGet, []string{"shipping", "zones", strconv.FormatInt(zoneID, 10), "methods"}, nil, nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

// FlatRateCost walks the zones in upstream order and returns the cost of the
// first enabled flat-rate method. found is false when no zone has one.
func (c *Client) FlatRateCost(ctx context.Context) (cost decimal.Decimal, found bool, err error) {
	ctx, span := tracer.Start(ctx, "commerce.FlatRateCost", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	zones, err := c.ShippingZones(ctx)
	if err != nil {
		recordError(span, err)
		return decimal.Zero, false, err
	}
	for _, zone := range zones {
		methods, err := c.ShippingMethods(ctx, zone.ID)
		if err != nil {
			recordError(span, err)
			return decimal.Zero, false, err
		}
		for _, m := range methods {
			if !m.Enabled || m.MethodID != flatRateMethod {
				continue
			}
			cost, err := parseCost(m.Settings["cost"].Value)
			if err != nil {
				return decimal.Zero, false, fmt.Errorf("commerce: zone %d method %d: %w", zone.ID, m.InstanceID, err)
			}
			span.SetAttributes(attribute.Int64("commerce.zone_id", zone.ID), attribute.String("commerce.cost", cost.String()))
			return cost, true, nil
		}
	}
	return decimal.Zero, false, nil
}

func parseCost(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	cost, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse flat rate cost %q: %w", value, err)
	}
	return cost, nil
}
