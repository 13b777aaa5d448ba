package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/giftkeeper/internal/flagx"
	"github.com/dmitrijs2005/giftkeeper/internal/timex"
)

type jsonS3 struct {
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	PathStyle       *bool  `json:"path_style"`
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-valued fields are treated as "not set" so a partial file only
// overrides what it names.
type JsonConfig struct {
	RemoteDSN           string          `json:"remote_dsn"`
	LocalDSN            string          `json:"local_dsn"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	SyncInterval        *timex.Duration `json:"sync_interval"`
	RemoteTimeout       *timex.Duration `json:"remote_timeout"`
	SessionTTL          *timex.Duration `json:"session_ttl"`
	StatusAddr          *string         `json:"status_addr"`
	LogFile             string          `json:"log_file"`
	S3                  *jsonS3         `json:"s3"`
}

// parseJson overlays Config with values loaded from the JSON file passed
// via -c or -config. Without the flag nothing is loaded.
//
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.RemoteDSN != "" {
		cfg.RemoteDSN = jc.RemoteDSN
	}
	if jc.LocalDSN != "" {
		cfg.LocalDSN = jc.LocalDSN
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.RemoteTimeout != nil {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.StatusAddr != nil {
		cfg.StatusAddr = *jc.StatusAddr
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}

	if s := jc.S3; s != nil {
		if s.Region != "" {
			cfg.S3.Region = s.Region
		}
		if s.Bucket != "" {
			cfg.S3.Bucket = s.Bucket
		}
		if s.Endpoint != "" {
			cfg.S3.Endpoint = s.Endpoint
		}
		if s.AccessKeyID != "" {
			cfg.S3.AccessKeyID = s.AccessKeyID
		}
		if s.SecretAccessKey != "" {
			cfg.S3.SecretAccessKey = s.SecretAccessKey
		}
		if s.PathStyle != nil {
			cfg.S3.PathStyle = *s.PathStyle
		}
	}
}
