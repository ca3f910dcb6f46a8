// Package config loads surveytab configuration.
//
// # Configuration Sources
//
// Values are applied in this order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML file: the path passed to Load, else $SURVEY_CONFIG, else ./surveycli.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Every variable is prefixed with SURVEY and follows the YAML nesting:
//
//	SURVEY_SERVER_PORT=9090
//	SURVEY_LOGGING_LEVEL=debug
//	SURVEY_DATA_CODEBOOK=codebook.yaml
//	SURVEY_TABLES_PERCENT_FORMAT=.1%
//	SURVEY_TABLES_SIGNIFICANCE_LEVEL=0.01
//
// # Table Defaults
//
// The tables section holds the default survey.Options. Config.TableOptions
// converts it; HTTP query parameters and CLI flags override it per request.
package config
