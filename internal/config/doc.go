// Package config loads morph configuration.
//
// Configuration is read from morph.toml or morph.json. Every section is
// optional; missing fields keep their defaults.
//
//	[server]
//	host = "0.0.0.0"
//	port = 7070
//	read_timeout = "30s"
//
//	[reconcile]
//	key_attribute = "data-key"
//
//	[store]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	compress = true
//
//	[metrics]
//	enabled = true
//	path = "/metrics"
//
//	[log]
//	level = "debug"
//	format = "json"
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
