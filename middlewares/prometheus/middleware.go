package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/levlavryniuk/sqlorm"
)

// MiddlewareBuilder records statement latency in a summary vector labeled
// by statement type and table.
type MiddlewareBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
}

func (m MiddlewareBuilder) Build() sqlorm.Middleware {
	vector := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: m.Namespace,
		Subsystem: m.Subsystem,
		Name:      m.Name,
		Help:      m.Help,
		Objectives: map[float64]float64{
			0.5:   0.01,
			0.75:  0.01,
			0.90:  0.01,
			0.99:  0.001,
			0.999: 0.0001,
		},
	}, []string{"type", "table"})

	prometheus.MustRegister(vector)

	return func(next sqlorm.Handler) sqlorm.Handler {
		return func(ctx context.Context, qc *sqlorm.QueryContext) *sqlorm.QueryResult {
			startTime := time.Now()
			table := ""
			if qc.Model != nil {
				table = qc.Model.TableName
			}
			defer func() {
				vector.WithLabelValues(qc.Type, table).
					Observe(float64(time.Since(startTime).Milliseconds()))
			}()
			return next(ctx, qc)
		}
	}
}
