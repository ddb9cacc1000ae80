// Package config provides configuration parsing for the sync console.
//
// The configuration is stored in console.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "api": {
//	    "baseURL": "http://localhost:8080",
//	    "timeout": "10s"
//	  },
//	  "storage": {
//	    "backend": "file",
//	    "file": { "path": ".syncconsole/session.json" },
//	    "keyring": { "service": "sss-sync-console" },
//	    "redis": { "addr": "localhost:6379", "db": 0, "prefix": "sss:console:" },
//	    "sql": { "driver": "sqlite", "dsn": "file:console.db", "table": "console_session" }
//	  },
//	  "serve": { "host": "localhost", "port": 5173 },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("API:", cfg.API.BaseURL)
package config
