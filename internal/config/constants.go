package config

// Application constants
const (
	AppName    = "netmob"
	AppVersion = "1.0.0"

	// Default on-disk layout, relative to the working directory
	DefaultDataDir      = "data/TrafficData"
	DefaultGeoDir       = "data/geo"
	DefaultOutputDir    = "data/output"
	DefaultMatchingFile = "MatchingIrisTile.csv"
	DefaultZonesFile    = "iris.geojson"

	// Rate Limiting
	DefaultRateLimit = 50
	DefaultBurstSize = 20

	// Pipeline defaults
	DefaultWorkers      = 8
	DefaultServiceBatch = 5
	DefaultNoisyStart   = "15:00"
	DefaultNightStart   = "22:00"
	DefaultNightEnd     = "03:00"
)
