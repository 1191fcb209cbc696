package config

// Header constants.
const (
	HEADER_KEY_X_USER_ID = "X-User-Id"
)

// Environment variable keys.
const (
	ENV_KEY_APP_ENV   = "APP_ENV"
	ENV_KEY_LOG_LEVEL = "LOG_LEVEL"

	ENV_KEY_ONOFFICE_API_URL    = "ONOFFICE_API_URL"
	ENV_KEY_ONOFFICE_API_TOKEN  = "ONOFFICE_API_TOKEN"
	ENV_KEY_ONOFFICE_API_SECRET = "ONOFFICE_API_SECRET"

	ENV_KEY_OTEL_ENDPOINT = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type ContextKey uint

const (
	_ ContextKey = iota
	CTX_KEY_USER_ID
)
