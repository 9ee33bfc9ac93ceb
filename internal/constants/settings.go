package constants

const (
	// Environment overrides
	EnvConfigPath = "TOPTHREE_CONFIG_PATH"
	EnvStorage    = "TOPTHREE_STORAGE"
	EnvTimezone   = "TOPTHREE_TIMEZONE"
	EnvAPIURL     = "TOPTHREE_API_URL"
	EnvAPIToken   = "TOPTHREE_API_TOKEN"
	EnvServerPort = "TOPTHREE_SERVER_PORT"
	EnvDebug      = "TOPTHREE_DEBUG"

	// Default Settings Values
	DefaultTimezone = "Local" // Use system local timezone by default
)
