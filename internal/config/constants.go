package config

import "time"

// Application constants
const (
	AppName = "surveytab"

	// EnvPrefix namespaces every environment variable, e.g. SURVEY_SERVER_PORT
	EnvPrefix         = "SURVEY"
	DefaultConfigFile = "surveycli.yaml"

	DefaultPort      = 8080
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	DefaultLogLevel  = "info"
	DefaultExportDir = "exports"
	DefaultLogsDir   = "logs"

	DefaultReportWorkers = 4
	DefaultReportTimeout = 5 * time.Minute
)
