package common

// DateLayout is the calendar date format used for holiday dates.
const DateLayout = "2006-01-02"

// Metadata keys shared by the services and the sync engine.
const (
	MetaUsername       = "username"
	MetaSalt           = "salt"
	MetaVerifier       = "verifier"
	MetaUserID         = "user_id"
	MetaSessionSecret  = "session_secret"
	MetaSessionToken   = "session_token"
	MetaLastFullSyncAt = "last_full_sync_at"
)
