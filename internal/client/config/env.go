package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/giftkeeper/internal/flagx"
)

// Environment variable names understood by parseEnv.
const (
	EnvRemoteDSN           = "GIFTKEEPER_REMOTE_DSN"
	EnvLocalDSN            = "GIFTKEEPER_LOCAL_DSN"
	EnvOnlineCheckInterval = "GIFTKEEPER_ONLINE_CHECK_INTERVAL"
	EnvSyncInterval        = "GIFTKEEPER_SYNC_INTERVAL"
	EnvRemoteTimeout       = "GIFTKEEPER_REMOTE_TIMEOUT"
	EnvSessionTTL          = "GIFTKEEPER_SESSION_TTL"
	EnvStatusAddr          = "GIFTKEEPER_STATUS_ADDR"
	EnvLogFile             = "GIFTKEEPER_LOG_FILE"
	EnvS3Region            = "GIFTKEEPER_S3_REGION"
	EnvS3Bucket            = "GIFTKEEPER_S3_BUCKET"
	EnvS3Endpoint          = "GIFTKEEPER_S3_ENDPOINT"
	EnvS3AccessKeyID       = "GIFTKEEPER_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey   = "GIFTKEEPER_S3_SECRET_ACCESS_KEY"
	EnvS3PathStyle         = "GIFTKEEPER_S3_PATH_STYLE"
)

// parseEnv overlays Config with environment variables. A dotenv file passed
// with -e/-env is loaded first; otherwise ./.env is tried and silently
// skipped when missing. Variables already set in the process win over the
// file, as godotenv.Load never overrides them.
//
// Panics when a dotenv file named on the command line cannot be read or
// when a variable holds a malformed value.
func parseEnv(cfg *Config) {
	if file := flagx.EnvFileFlags(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	setString(&cfg.RemoteDSN, EnvRemoteDSN)
	setString(&cfg.LocalDSN, EnvLocalDSN)
	setDuration(&cfg.OnlineCheckInterval, EnvOnlineCheckInterval)
	setDuration(&cfg.SyncInterval, EnvSyncInterval)
	setDuration(&cfg.RemoteTimeout, EnvRemoteTimeout)
	setDuration(&cfg.SessionTTL, EnvSessionTTL)
	setString(&cfg.StatusAddr, EnvStatusAddr)
	setString(&cfg.LogFile, EnvLogFile)

	setString(&cfg.S3.Region, EnvS3Region)
	setString(&cfg.S3.Bucket, EnvS3Bucket)
	setString(&cfg.S3.Endpoint, EnvS3Endpoint)
	setString(&cfg.S3.AccessKeyID, EnvS3AccessKeyID)
	setString(&cfg.S3.SecretAccessKey, EnvS3SecretAccessKey)
	if v, ok := os.LookupEnv(EnvS3PathStyle); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.S3.PathStyle = b
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
