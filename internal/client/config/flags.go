package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-r string     remote PostgreSQL DSN
//	-l string     local SQLite DSN
//	-i int        online check interval in seconds
//	-s int        full sync interval in seconds
//	-http string  status endpoint address
//	-log string   log file path
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// components (-c, -e) do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-r", "-l", "-i", "-s", "-http", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RemoteDSN, "r", cfg.RemoteDSN, "remote PostgreSQL DSN")
	fs.StringVar(&cfg.LocalDSN, "l", cfg.LocalDSN, "local SQLite DSN")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "full sync interval (in seconds)")
	fs.StringVar(&cfg.StatusAddr, "http", cfg.StatusAddr, "status endpoint address, empty to disable")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
