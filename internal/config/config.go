package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the lifecycle worker. Grace
// period and retention window are invariants of the engine, not knobs, so
// they live as constants in the jobs package instead.
type Config struct {
	Addr             string `env:"ADDR,default=:8085"`
	DBDSN            string `env:"DB_DSN,required"`
	NATSURL          string `env:"NATS_URL"`
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	DeletionSchedule string `env:"DELETION_FINALIZATION_CRON,default=0 4 * * *"`
	AuditSchedule    string `env:"AUDIT_RETENTION_CRON,default=0 3 * * *"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
