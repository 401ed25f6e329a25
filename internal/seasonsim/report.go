package seasonsim

import (
	"context"
	"log"
	"strings"

	"github.com/seambreak/gully/pkg/logger"
	"github.com/seambreak/gully/pkg/metrics"
)

// reportMetrics summarizes the counters the run left behind in the
// metrics registry. Counter families only; gauges move while you read
// them. Verbose mode breaks labelled counters out per label set.
func reportMetrics(ctx context.Context, config *Config) {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		logger.Get().Warn(ctx, "failed to gather metrics", logger.Error(err))
		return
	}

	log.Println("📊 Pipeline counters:")
	for _, fam := range families {
		name := fam.GetName()
		if !strings.HasSuffix(name, "_total") {
			continue
		}

		sum := 0.0
		for _, m := range fam.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		if sum == 0 && !config.Verbose {
			continue
		}
		log.Printf("   %s: %.0f", name, sum)

		if !config.Verbose {
			continue
		}
		for _, m := range fam.GetMetric() {
			labels := m.GetLabel()
			if len(labels) == 0 {
				continue
			}
			parts := make([]string, 0, len(labels))
			for _, l := range labels {
				parts = append(parts, l.GetName()+"="+l.GetValue())
			}
			log.Printf("      {%s}: %.0f", strings.Join(parts, ","), m.GetCounter().GetValue())
		}
	}
}
