package otel

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"OTEL_ENABLED"`
	Insecure bool   `envconfig:"OTEL_INSECURE"`
}
