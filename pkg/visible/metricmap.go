package visible

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/meridian-vc/metricsync/internal/domain"
)

// FetchMetricMap resolves, for every portfolio company with a usable
// website, the most recent value of the named metric, keyed by normalized
// domain. Companies missing a website, the metric, a usable data point, or
// a coercible value are skipped with a warning; one bad company never
// aborts the run.
//
// When two companies normalize to the same domain the later one wins the
// key. This costs one request per company per subresource with no
// batching, so it dominates run time.
func (c *httpClient) FetchMetricMap(ctx context.Context, metricName string) map[string]float64 {
	log := zap.L().With(zap.String("metric", metricName))
	log.Info("visible: fetching metric data")

	companies := c.PortfolioCompanies(ctx)
	log.Info("visible: companies retrieved", zap.Int("count", len(companies)))

	propertyID := c.WebsitePropertyID(ctx)
	if propertyID == "" {
		log.Warn("visible: no 'Website' property found")
		return map[string]float64{}
	}

	wanted := strings.ToLower(strings.TrimSpace(metricName))
	out := map[string]float64{}

	for _, company := range companies {
		clog := log.With(zap.String("company", company.Name))

		website := c.CompanyWebsite(ctx, company.ID, propertyID)
		if website == "" || website == "N/A" {
			continue
		}
		key := domain.Normalize(website)
		if key == "" {
			continue
		}

		metric, ok := findMetric(c.CompanyMetrics(ctx, company.ID), wanted)
		if !ok {
			clog.Warn("visible: metric not found for company")
			continue
		}

		latest := c.LatestDataPoint(ctx, metric.ID)
		if !usableValue(latest.Value) {
			clog.Warn("visible: no data for metric")
			continue
		}

		value, ok := coerceFloat(latest.Value)
		if !ok {
			clog.Warn("visible: invalid metric value", zap.Any("value", latest.Value))
			continue
		}

		if _, dup := out[key]; dup {
			clog.Debug("visible: duplicate domain, keeping later company", zap.String("domain", key))
		}
		out[key] = value
		clog.Info("visible: company resolved",
			zap.String("domain", key),
			zap.Float64("value", value),
			zap.String("date", latest.Date),
		)
	}

	log.Info("visible: metric data loaded", zap.Int("companies", len(out)))
	return out
}

// findMetric matches on name, case-insensitively after trimming.
func findMetric(metrics []Metric, wanted string) (Metric, bool) {
	for _, m := range metrics {
		if strings.ToLower(strings.TrimSpace(m.Name)) == wanted {
			return m, true
		}
	}
	return Metric{}, false
}

// coerceFloat converts a decoded JSON data point value to a float64.
// Numbers pass through; numeric strings are parsed.
func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
