package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/giftkeeper/internal/client/client"
	"github.com/dmitrijs2005/giftkeeper/internal/client/models"
	"github.com/dmitrijs2005/giftkeeper/internal/client/session"
	"github.com/dmitrijs2005/giftkeeper/internal/client/token"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
	"github.com/dmitrijs2005/giftkeeper/internal/cryptox"
	"github.com/dmitrijs2005/giftkeeper/internal/logging"
)

// ---- helpers ----

func setupDB(t *testing.T) *client.Repositories {
	t.Helper()
	repos, err := client.InitDatabase(context.Background(), fmt.Sprintf("file:authsvc_%p?mode=memory&cache=shared", t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

func insertMeta(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	require.NoError(t, err)
	return v
}

func seedOfflineData(t *testing.T, db *sql.DB, username, password string) {
	t.Helper()
	salt := []byte("salty")
	insertMeta(t, db, common.MetaUsername, []byte(username))
	insertMeta(t, db, common.MetaSalt, salt)
	insertMeta(t, db, common.MetaVerifier, cryptox.VerifierFor([]byte(password), salt))
	insertMeta(t, db, common.MetaUserID, []byte("u1"))
}

func newAuth(fc *fakeClient, repos *client.Repositories, sess *session.Session) AuthService {
	return NewAuthService(fc, repos.DB, sess, time.Hour, logging.NewNopLogger())
}

// ---- fake client ----

// fakeClient implements the account part of client.Client for AuthService
// tests. Entity calls come from the embedded interface and are not used.
type fakeClient struct {
	client.Client

	CloseErr    error
	RegisterErr error

	GetSaltRet []byte
	GetSaltErr error

	LoginRet string
	LoginErr error

	PingErr error

	LastRegisterUser     string
	LastRegisterSalt     []byte
	LastRegisterVerifier []byte

	LastGetSaltUser string

	LastLoginUser     string
	LastLoginVerifier []byte
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) (string, error) {
	f.LastRegisterUser = username
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterVerifier = append([]byte(nil), verifier...)
	return "new-id", f.RegisterErr
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	f.LastGetSaltUser = username
	return append([]byte(nil), f.GetSaltRet...), f.GetSaltErr
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	f.LastLoginUser = username
	f.LastLoginVerifier = append([]byte(nil), verifier...)
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

// ---- TESTS ----

func TestOfflineLogin_NoLocalData(t *testing.T) {
	repos := setupDB(t)
	sess := session.New()
	svc := newAuth(&fakeClient{}, repos, sess)

	err := svc.OfflineLogin(context.Background(), "user@example.com", []byte("pass"))
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
	require.False(t, sess.IsAuthenticated())
}

func TestOfflineLogin_UsernameMismatch_Unauthorized(t *testing.T) {
	repos := setupDB(t)
	seedOfflineData(t, repos.DB, "other", "pass")
	svc := newAuth(&fakeClient{}, repos, session.New())

	err := svc.OfflineLogin(context.Background(), "user", []byte("pass"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestOfflineLogin_WrongPassword_Unauthorized(t *testing.T) {
	repos := setupDB(t)
	seedOfflineData(t, repos.DB, "user", "correct")
	svc := newAuth(&fakeClient{}, repos, session.New())

	err := svc.OfflineLogin(context.Background(), "user", []byte("wrong"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestOfflineLogin_Success_SignsIn(t *testing.T) {
	repos := setupDB(t)
	seedOfflineData(t, repos.DB, "user", "pass")
	sess := session.New()
	svc := newAuth(&fakeClient{}, repos, sess)

	require.NoError(t, svc.OfflineLogin(context.Background(), "user", []byte("pass")))

	st := sess.State()
	require.True(t, st.Authenticated)
	require.Equal(t, "u1", st.UserID)
	require.True(t, st.Offline)
}

func TestOnlineLogin_GetSaltError_Wrapped(t *testing.T) {
	repos := setupDB(t)
	fc := &fakeClient{GetSaltErr: errors.New("network down")}
	svc := newAuth(fc, repos, session.New())

	err := svc.OnlineLogin(context.Background(), "u", []byte("p"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "get salt error:"))
}

func TestOnlineLogin_LoginError_Wrapped(t *testing.T) {
	repos := setupDB(t)
	fc := &fakeClient{GetSaltRet: []byte("s"), LoginErr: client.ErrUnauthorized}
	svc := newAuth(fc, repos, session.New())

	err := svc.OnlineLogin(context.Background(), "u", []byte("p"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.True(t, strings.HasPrefix(err.Error(), "login error:"))
}

func TestOnlineLogin_Success_SavesOfflineDataAndClaims(t *testing.T) {
	repos := setupDB(t)
	ctx := context.Background()
	fc := &fakeClient{GetSaltRet: []byte("salt"), LoginRet: "u1"}
	sess := session.New()
	svc := newAuth(fc, repos, sess)

	// created before anybody signed in
	rec := models.Holiday{ID: "H1", Name: "Xmas", Date: "2099-12-25"}.Record()
	require.NoError(t, repos.Holidays.Put(ctx, rec))
	_, err := repos.Queue.Enqueue(ctx, models.OpCreate, models.EntityHolidays, "H1", rec, nil)
	require.NoError(t, err)

	require.NoError(t, svc.OnlineLogin(ctx, "user", []byte("pass")))

	require.Equal(t, []byte("user"), getMeta(t, repos.DB, common.MetaUsername))
	require.Equal(t, []byte("salt"), getMeta(t, repos.DB, common.MetaSalt))
	require.Equal(t, []byte("u1"), getMeta(t, repos.DB, common.MetaUserID))
	savedVerifier := getMeta(t, repos.DB, common.MetaVerifier)
	require.Equal(t, cryptox.VerifierFor([]byte("pass"), []byte("salt")), savedVerifier)

	require.Equal(t, "user", fc.LastLoginUser)
	require.Equal(t, savedVerifier, fc.LastLoginVerifier)

	uid, ok := sess.UserID()
	require.True(t, ok)
	require.Equal(t, "u1", uid)
	require.False(t, sess.State().Offline)

	claimed, err := repos.Holidays.Get(ctx, "H1")
	require.NoError(t, err)
	require.Equal(t, "u1", claimed.Owner())
	entries, err := repos.Queue.Drain(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserID)
	require.Equal(t, "u1", *entries[0].UserID)
}

func TestRestoreSession(t *testing.T) {
	repos := setupDB(t)
	ctx := context.Background()
	fc := &fakeClient{GetSaltRet: []byte("salt"), LoginRet: "u1"}

	first := newAuth(fc, repos, session.New())
	ok, err := first.RestoreSession(ctx)
	require.NoError(t, err)
	require.False(t, ok, "nothing stored yet")

	require.NoError(t, first.OnlineLogin(ctx, "user", []byte("pass")))

	// a fresh process over the same database
	sess := session.New()
	second := newAuth(fc, repos, sess)
	ok, err = second.RestoreSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u1", sess.State().UserID)
	require.Equal(t, "user", sess.State().Username)

	require.NoError(t, second.Logout(ctx))
	require.False(t, sess.IsAuthenticated())
	ok, err = second.RestoreSession(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// cached credentials survive logout
	require.NoError(t, second.OfflineLogin(ctx, "user", []byte("pass")))
}

func TestRestoreSession_ExpiredTokenIsDiscarded(t *testing.T) {
	repos := setupDB(t)
	ctx := context.Background()

	secret := []byte("install-secret")
	tok, err := token.Generate("u1", "user", secret, -time.Minute)
	require.NoError(t, err)
	insertMeta(t, repos.DB, common.MetaSessionSecret, secret)
	insertMeta(t, repos.DB, common.MetaSessionToken, []byte(tok))

	sess := session.New()
	ok, err := newAuth(&fakeClient{}, repos, sess).RestoreSession(ctx)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, sess.IsAuthenticated())

	var n int
	require.NoError(t, repos.DB.QueryRow(`SELECT COUNT(*) FROM metadata WHERE key = ?`, common.MetaSessionToken).Scan(&n))
	require.Zero(t, n)
}

func TestRegister_DelegatesToClient(t *testing.T) {
	repos := setupDB(t)
	fc := &fakeClient{}
	svc := newAuth(fc, repos, session.New())

	require.NoError(t, svc.Register(context.Background(), "u", []byte("p")))

	require.Equal(t, "u", fc.LastRegisterUser)
	require.Len(t, fc.LastRegisterSalt, cryptox.SaltSize)
	require.Equal(t, cryptox.VerifierFor([]byte("p"), fc.LastRegisterSalt), fc.LastRegisterVerifier)
}

func TestRegister_ErrorFromClient(t *testing.T) {
	repos := setupDB(t)
	fc := &fakeClient{RegisterErr: client.ErrUserExists}
	svc := newAuth(fc, repos, session.New())

	err := svc.Register(context.Background(), "u", []byte("p"))
	require.ErrorIs(t, err, client.ErrUserExists)
}

func TestPing_Close_ClearOfflineData_Delegations(t *testing.T) {
	repos := setupDB(t)
	insertMeta(t, repos.DB, "x", []byte("y"))
	svc := newAuth(&fakeClient{}, repos, session.New())

	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close(context.Background()))
	require.NoError(t, svc.ClearOfflineData(context.Background()))

	var n int
	require.NoError(t, repos.DB.QueryRow(`SELECT COUNT(*) FROM metadata`).Scan(&n))
	require.Equal(t, 0, n)
}

func TestPing_ErrorPropagates(t *testing.T) {
	repos := setupDB(t)
	svc := newAuth(&fakeClient{PingErr: errors.New("down")}, repos, session.New())
	require.Error(t, svc.Ping(context.Background()))
}

func TestClose_ErrorPropagates(t *testing.T) {
	repos := setupDB(t)
	svc := newAuth(&fakeClient{CloseErr: errors.New("io")}, repos, session.New())
	require.Error(t, svc.Close(context.Background()))
}
