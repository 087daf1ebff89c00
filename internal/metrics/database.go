package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPool exposes pgxpool statistics as gauges read at scrape time.
func RegisterPool(pool *pgxpool.Pool) error {
	gauges := []struct {
		name, help string
		value      func(*pgxpool.Stat) float64
	}{
		{"db_connections_total", "Total connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
		{"db_connections_in_use", "Connections currently acquired", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		{"db_connections_idle", "Idle connections", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
		{"db_connections_max", "Maximum pool size", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	}
	for _, g := range gauges {
		value := g.value
		err := Registry.Register(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: g.name, Help: g.help},
			func() float64 { return value(pool.Stat()) },
		))
		if err != nil {
			return err
		}
	}
	return nil
}
