// Package config loads runtime configuration for the GiftKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a dotenv file selected
//     with -e or -env (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-r string   PostgreSQL DSN of the remote store
//	-l string   SQLite DSN of the local store
//	-i int      online status check interval (seconds)
//	-s int      full sync interval (seconds)
//	-http string  address of the local status endpoint ("" disables it)
//	-log string   path of the log file
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "remote_dsn": "postgres://giftkeeper@localhost:5432/giftkeeper",
//	  "local_dsn": "giftkeeper.db",
//	  "online_check_interval": "3s",
//	  "sync_interval": "5m",
//	  "remote_timeout": "10s",
//	  "session_ttl": "720h",
//	  "status_addr": "127.0.0.1:9464",
//	  "log_file": "giftkeeper.log",
//	  "s3": {"region": "us-east-1", "bucket": "giftkeeper-backups"}
//	}
package config
