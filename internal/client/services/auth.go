// Package services contains the application services of the GiftKeeper
// client: domain CRUD over holidays, recipients and gifts, authentication
// and cloud backup. Every domain mutation lands in the local store first and
// is queued for the sync engine.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/giftkeeper/internal/client/client"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/entities"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/giftkeeper/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/giftkeeper/internal/client/token"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
	"github.com/dmitrijs2005/giftkeeper/internal/cryptox"
	"github.com/dmitrijs2005/giftkeeper/internal/dbx"
	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

// SessionSink receives the outcome of a login or logout.
type SessionSink interface {
	SignIn(userID, username string, offline bool)
	SignOut()
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - OnlineLogin: authenticate against the backend and cache offline auth data.
//   - OfflineLogin: verify credentials against the locally cached data.
//   - RestoreSession: resume the session stored by the last login.
//   - Register: create a new account on the backend.
//   - Logout: end the session, keeping cached credentials.
//   - ClearOfflineData: wipe locally cached auth metadata.
//
// A successful login claims every local record and queue entry created while
// nobody was signed in.
type AuthService interface {
	OfflineLogin(ctx context.Context, username string, password []byte) error
	OnlineLogin(ctx context.Context, username string, password []byte) error
	RestoreSession(ctx context.Context) (bool, error)
	Register(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	ClearOfflineData(ctx context.Context) error
}

type authService struct {
	client     client.Client
	db         *sql.DB
	session    SessionSink
	sessionTTL time.Duration
	log        logging.Logger
}

func NewAuthService(client client.Client, db *sql.DB, session SessionSink, sessionTTL time.Duration, log logging.Logger) AuthService {
	return &authService{client: client, db: db, session: session, sessionTTL: sessionTTL, log: log}
}

func (a *authService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

// OfflineLogin checks password against the salt and verifier cached by the
// last online login. Missing cache yields client.ErrLocalDataNotAvailable and
// a mismatch client.ErrUnauthorized.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) error {
	meta := a.getMetadataRepo()

	cached := make(map[string][]byte, 4)
	for _, key := range []string{common.MetaUsername, common.MetaSalt, common.MetaVerifier, common.MetaUserID} {
		v, err := meta.Get(ctx, key)
		if err != nil {
			return err
		}
		if v == nil {
			return client.ErrLocalDataNotAvailable
		}
		cached[key] = v
	}

	if string(cached[common.MetaUsername]) != username {
		return client.ErrUnauthorized
	}
	candidate := cryptox.VerifierFor(password, cached[common.MetaSalt])
	if !cryptox.VerifierMatches(cached[common.MetaVerifier], candidate) {
		return client.ErrUnauthorized
	}

	return a.startSession(ctx, string(cached[common.MetaUserID]), username, true)
}

// OnlineLogin authenticates against the backend and caches username, salt,
// verifier and user id for later offline logins.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) error {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	verifier := cryptox.VerifierFor(password, salt)
	userID, err := a.client.Login(ctx, username, verifier)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		for key, v := range map[string][]byte{
			common.MetaUsername: []byte(username),
			common.MetaSalt:     salt,
			common.MetaVerifier: verifier,
			common.MetaUserID:   []byte(userID),
		} {
			if err := meta.Set(ctx, key, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("offline data saving error: %w", err)
	}

	return a.startSession(ctx, userID, username, false)
}

// startSession claims unowned local data, persists a session token and
// finally publishes the new session. Claiming comes first so the sync pass
// triggered by the sign-in already pushes the claimed entries.
func (a *authService) startSession(ctx context.Context, userID, username string, offline bool) error {
	claimed, err := a.claimUnowned(ctx, userID)
	if err != nil {
		return fmt.Errorf("claim local data: %w", err)
	}
	if claimed > 0 {
		a.log.Info(ctx, "claimed local data", "user_id", userID, "rows", claimed)
	}

	if err := a.saveToken(ctx, userID, username); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.session.SignIn(userID, username, offline)
	return nil
}

func (a *authService) claimUnowned(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, t := range models.PullOrder {
			n, err := entities.NewSQLiteRepository(tx, t).ClaimUnowned(ctx, userID)
			if err != nil {
				return err
			}
			total += n
		}
		n, err := syncqueue.NewSQLiteRepository(tx).ClaimUnowned(ctx, userID)
		total += n
		return err
	})
	return total, err
}

// sessionSecret returns the per-install signing key, creating it on first use.
func (a *authService) sessionSecret(ctx context.Context) ([]byte, error) {
	meta := a.getMetadataRepo()
	secret, err := meta.Get(ctx, common.MetaSessionSecret)
	if err != nil || secret != nil {
		return secret, err
	}
	secret = common.GenerateRandByteArray(32)
	if err := meta.Set(ctx, common.MetaSessionSecret, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

func (a *authService) saveToken(ctx context.Context, userID, username string) error {
	secret, err := a.sessionSecret(ctx)
	if err != nil {
		return err
	}
	tok, err := token.Generate(userID, username, secret, a.sessionTTL)
	if err != nil {
		return err
	}
	return a.getMetadataRepo().Set(ctx, common.MetaSessionToken, []byte(tok))
}

// RestoreSession signs in from the persisted token. It returns false when
// there is no usable token; an expired or forged token is removed.
func (a *authService) RestoreSession(ctx context.Context) (bool, error) {
	meta := a.getMetadataRepo()
	raw, err := meta.Get(ctx, common.MetaSessionToken)
	if err != nil || raw == nil {
		return false, err
	}
	secret, err := meta.Get(ctx, common.MetaSessionSecret)
	if err != nil {
		return false, err
	}

	claims, err := token.Parse(string(raw), secret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrInvalidToken) {
			a.log.Info(ctx, "stored session discarded", "reason", err)
			return false, meta.Delete(ctx, common.MetaSessionToken)
		}
		return false, err
	}

	a.session.SignIn(claims.UserID, claims.Username, true)
	return true, nil
}

// Register creates a new account. A random salt is generated and only the
// salt and derived verifier are sent to the backend.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	verifier := cryptox.VerifierFor(password, salt)

	if _, err := a.client.Register(ctx, username, salt, verifier); err != nil {
		return err
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.getMetadataRepo().Delete(ctx, common.MetaSessionToken); err != nil {
		return err
	}
	a.session.SignOut()
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// ClearOfflineData wipes locally cached auth metadata, the session token
// included.
func (a *authService) ClearOfflineData(ctx context.Context) error {
	return a.getMetadataRepo().Clear(ctx)
}
