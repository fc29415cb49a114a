// Package config provides configuration parsing for Lumina projects.
//
// The configuration is stored in lumina.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "bar",
//	  "debug": false,
//	  "logLevel": "info",
//	  "logFormat": "text",
//	  "devtools": {
//	    "enabled": true,
//	    "host": "localhost",
//	    "port": 9229
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "lumina"
//	  },
//	  "tracing": {
//	    "tracerName": "lumina"
//	  },
//	  "snapshot": {
//	    "bucket": "ui-goldens",
//	    "prefix": "snapshots/",
//	    "region": "eu-west-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	slog.SetDefault(cfg.Logger(os.Stderr))
package config
