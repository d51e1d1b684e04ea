// Package config loads the bnfcli configuration.
//
// Sources are applied in increasing order of precedence:
//
//	1. Default values
//	2. YAML file (BNF_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. .env file in the working directory
//	4. Environment variables
//
// Environment variables follow the pattern BNF_<SECTION>_<FIELD>:
//
//	BNF_LOGGING_LEVEL=debug
//	BNF_LOADER_STRICT_TIME=false
//	BNF_STRATEGY_SEED_FLOOR=250
//	BNF_OUTPUT_FORMAT=xlsx
//	BNF_SERVER_PORT=8080
//
// Strategy thresholds are kept as strings and checked by Validate; the
// dataprocessing package turns them into typed rules.
package config
