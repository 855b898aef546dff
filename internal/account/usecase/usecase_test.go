package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/clock"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/goroutine"
	"github.com/yogaprasetya/otpguard/internal/pkg/hash"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
	"github.com/yogaprasetya/otpguard/internal/pkg/jwt"
	"github.com/yogaprasetya/otpguard/internal/pkg/mfa"
	"github.com/yogaprasetya/otpguard/internal/pkg/otp"
	"github.com/yogaprasetya/otpguard/internal/pkg/uid"
	"github.com/yogaprasetya/otpguard/internal/pkg/validator"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)

// memStore is an in-memory repoStore with the same optimistic concurrency
// contract as the real drivers: Save compares versions and returns
// ErrConflict when the stored record moved on.
type memStore struct {
	mu       sync.Mutex
	byID     map[string]entity.Account
	byEmail  map[string]string
	failSave int
}

func newMemStore() *memStore {
	return &memStore{
		byID:    map[string]entity.Account{},
		byEmail: map[string]string{},
	}
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	acc := m.byID[id]
	return &acc, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.byID[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &acc, nil
}

func (m *memStore) Create(_ context.Context, acc entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[acc.Email]; ok {
		return goerror.ErrConflict
	}
	m.byID[acc.ID] = acc
	m.byEmail[acc.Email] = acc.ID
	return nil
}

func (m *memStore) Save(_ context.Context, acc entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSave > 0 {
		m.failSave--
		return goerror.ErrConflict
	}

	current, ok := m.byID[acc.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	if current.Version != acc.Version {
		return goerror.ErrConflict
	}

	acc.Version++
	m.byID[acc.ID] = acc
	return nil
}

type memMessaging struct {
	mu       sync.Mutex
	enabled  []TwoFactorEnabledEvent
	disabled []TwoFactorDisabledEvent
}

func (m *memMessaging) PublishTwoFactorEnabled(_ context.Context, msg TwoFactorEnabledEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = append(m.enabled, msg)
	return nil
}

func (m *memMessaging) PublishTwoFactorDisabled(_ context.Context, msg TwoFactorDisabledEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = append(m.disabled, msg)
	return nil
}

type fixture struct {
	uc    *Usecase
	store *memStore
	mq    *memMessaging
	gm    *goroutine.Manager
	totp  otp.OTP
	jwt   jwt.JWT
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	fixedClock := &clock.Fixed{At: testNow}

	tokenSvc, err := jwt.NewSymmetric(jwt.Config{
		Secret:    bytes.Repeat([]byte{0x42}, 64),
		Issuer:    "otpguard",
		Audiences: []string{"otpguard-api"},
		TTL:       time.Hour,
		Clock:     fixedClock,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	encryptor, err := mfa.NewAESGCMEncryptor(bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)

	totpSvc := otp.NewTOTP("OTPGuard", 30, libotp.DigitsSix)
	store := newMemStore()
	mq := &memMessaging{}
	gm := goroutine.NewManager(10)

	uc := New(Dependency{
		RepoStore:       store,
		RepoMessaging:   mq,
		Validator:       v,
		Bcrypt:          hash.NewBcrypt(4, "test-pepper"),
		Argon2ID:        hash.NewArgon2id("test-pepper"),
		MFAEncryptor:    encryptor,
		MFARecoveryCode: mfa.NewRecoveryCode(0, 0),
		UUID:            uid.NewUUID(),
		Totp:            totpSvc,
		Clock:           fixedClock,
		JWT:             tokenSvc,
		Instrument:      instrument.NewNoop(),
		Goroutine:       gm,
	})

	return &fixture{uc: uc, store: store, mq: mq, gm: gm, totp: totpSvc, jwt: tokenSvc}
}

func (f *fixture) register(t *testing.T, email, password string) *entity.Account {
	t.Helper()

	err := f.uc.Register(context.Background(), RegisterInput{
		FullName: "Jane Doe",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	acc, err := f.store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return acc
}

func (f *fixture) authCtx(acc *entity.Account) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{AccountID: acc.ID, Email: acc.Email})
}

// enable walks an account through enrollment and confirmation and returns the
// plaintext TOTP secret and the recovery codes.
func (f *fixture) enable(t *testing.T, acc *entity.Account) (string, []string) {
	t.Helper()

	enroll, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)

	code, err := f.totp.GenerateCode(enroll.Secret, testNow)
	require.NoError(t, err)

	confirm, err := f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: code})
	require.NoError(t, err)

	return enroll.Secret, confirm.RecoveryCodes
}

func requireBusinessError(t *testing.T, err error, msg string, code goerror.Code) {
	t.Helper()

	var ge *goerror.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, msg, ge.Msg())
	assert.Equal(t, code, ge.Code())
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Register(context.Background(), RegisterInput{
		FullName: "  Jane Doe  ",
		Email:    "  Jane@Example.COM ",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	acc, err := f.store.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", acc.FullName)
	assert.NotEqual(t, "correct horse battery", acc.PasswordHash)
	assert.False(t, acc.TwoFactorEnabled)
	assert.EqualValues(t, 1, acc.Version)
	assert.Equal(t, testNow, acc.CreatedAt)
}

func TestRegisterMaxLengthPassword(t *testing.T) {
	f := newFixture(t)

	// The longest password validation admits must still hash and log in.
	long := strings.Repeat("x", 72)
	acc := f.register(t, "jane@example.com", long)

	out, err := f.uc.Login(context.Background(), LoginInput{
		Email:    acc.Email,
		Password: long,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@example.com", "correct horse battery")

	err := f.uc.Register(context.Background(), RegisterInput{
		FullName: "Other Jane",
		Email:    "JANE@example.com",
		Password: "another password",
	})
	requireBusinessError(t, err, "email already registered", goerror.CodeConflict)
}

func TestRegisterInvalidInput(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Register(context.Background(), RegisterInput{
		FullName: "J",
		Email:    "nope",
		Password: "short",
	})

	var ge *goerror.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, goerror.CodeInvalidInput, ge.Code())

	var fieldErrs validator.V10ValidationError
	require.ErrorAs(t, ge.Unwrap(), &fieldErrs)
	assert.Contains(t, fieldErrs, "password")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	out, err := f.uc.Login(context.Background(), LoginInput{
		Email:    "jane@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.False(t, out.SecondFactorRequired)
	require.NotEmpty(t, out.Token)

	clm, err := f.jwt.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, clm.AccountID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@example.com", "correct horse battery")

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email:    "jane@example.com",
		Password: "wrong password",
	})
	requireBusinessError(t, err, "invalid email or password", goerror.CodeUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever works",
	})

	// Same message as a wrong password so account existence is not probeable.
	requireBusinessError(t, err, "invalid email or password", goerror.CodeUnauthorized)
}

func TestLoginWithTwoFactorEnabled(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")
	f.enable(t, acc)

	out, err := f.uc.Login(context.Background(), LoginInput{
		Email:    "jane@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.True(t, out.SecondFactorRequired)
	assert.Empty(t, out.Token, "no session until the second factor is proven")
}

func TestTOTPEnroll(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	out, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)
	assert.NotEmpty(t, out.Secret)
	assert.Contains(t, out.ProvisioningURI, "otpauth://totp/")

	stored, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	require.NotEmpty(t, stored.TwoFactorSecret)
	assert.NotContains(t, string(stored.TwoFactorSecret), out.Secret)
	assert.Equal(t, entity.TwoFactorPending, stored.TwoFactorState())
}

func TestTOTPEnrollUnauthenticated(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.TOTPEnroll(context.Background())
	requireBusinessError(t, err, "authentication required", goerror.CodeUnauthorized)
}

func TestTOTPEnrollReplacesPendingSecret(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	first, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)

	second, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, second.Secret)

	// Only the latest pending secret confirms.
	staleCode, err := f.totp.GenerateCode(first.Secret, testNow)
	require.NoError(t, err)
	_, err = f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: staleCode})
	requireBusinessError(t, err, "invalid code", goerror.CodeUnauthorized)

	code, err := f.totp.GenerateCode(second.Secret, testNow)
	require.NoError(t, err)
	_, err = f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: code})
	require.NoError(t, err)
}

func TestTOTPEnrollAlreadyEnabled(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")
	f.enable(t, acc)

	_, err := f.uc.TOTPEnroll(f.authCtx(acc))
	requireBusinessError(t, err, "two-factor authentication is already enabled", goerror.CodeConflict)
}

func TestTOTPConfirm(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	enroll, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)

	code, err := f.totp.GenerateCode(enroll.Secret, testNow)
	require.NoError(t, err)

	out, err := f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: code})
	require.NoError(t, err)
	require.Len(t, out.RecoveryCodes, mfa.DefaultBatchSize)

	stored, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactorEnabled)
	require.Len(t, stored.RecoveryCodes, mfa.DefaultBatchSize)
	for i, hashed := range stored.RecoveryCodes {
		assert.NotEqual(t, out.RecoveryCodes[i], hashed, "recovery codes must be stored hashed")
	}

	require.NoError(t, f.gm.Wait())
	require.Len(t, f.mq.enabled, 1)
	assert.Equal(t, acc.ID, f.mq.enabled[0].AccountID)
}

func TestTOTPConfirmWithoutEnrollment(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	_, err := f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: "123456"})
	requireBusinessError(t, err, "no enrollment in progress", goerror.CodeConflict)
}

func TestTOTPConfirmWrongCode(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	enroll, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)

	// A code from the previous step fails: confirmation accepts no drift.
	stale, err := f.totp.GenerateCode(enroll.Secret, testNow.Add(-30*time.Second))
	require.NoError(t, err)

	_, err = f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: stale})
	requireBusinessError(t, err, "invalid code", goerror.CodeUnauthorized)

	stored, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	assert.Empty(t, stored.RecoveryCodes)
}

func TestTwoFactorValidate(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")
	secret, _ := f.enable(t, acc)

	// One step of drift is tolerated at login.
	code, err := f.totp.GenerateCode(secret, testNow.Add(-30*time.Second))
	require.NoError(t, err)

	out, err := f.uc.TwoFactorValidate(context.Background(), TwoFactorValidateInput{
		Email: "jane@example.com",
		Code:  code,
	})
	require.NoError(t, err)

	clm, err := f.jwt.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, clm.AccountID)

	before, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)

	current, err := f.totp.GenerateCode(secret, testNow)
	require.NoError(t, err)
	_, err = f.uc.TwoFactorValidate(context.Background(), TwoFactorValidateInput{
		Email: "jane@example.com",
		Code:  current,
	})
	require.NoError(t, err, "codes are not consumed by validation")

	after, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version, "validation never writes")
}

func TestTwoFactorValidateFailures(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")
	f.register(t, "john@example.com", "correct horse battery")
	f.enable(t, acc)

	tests := []struct {
		name  string
		email string
		code  string
	}{
		{"unknown email", "ghost@example.com", "123456"},
		{"account without 2fa", "john@example.com", "123456"},
		{"wrong code", "jane@example.com", "000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.TwoFactorValidate(context.Background(), TwoFactorValidateInput{
				Email: tc.email,
				Code:  tc.code,
			})
			requireBusinessError(t, err, "invalid code", goerror.CodeUnauthorized)
		})
	}
}

func TestTwoFactorRecover(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")
	_, codes := f.enable(t, acc)

	err := f.uc.TwoFactorRecover(context.Background(), TwoFactorRecoverInput{
		Email:        "jane@example.com",
		RecoveryCode: codes[0],
	})
	require.NoError(t, err)

	stored, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactorEnabled)
	assert.Empty(t, stored.TwoFactorSecret)
	assert.Len(t, stored.RecoveryCodes, mfa.DefaultBatchSize-1, "the matched code is consumed")

	require.NoError(t, f.gm.Wait())
	require.Len(t, f.mq.disabled, 1)
	assert.Equal(t, "recovery_code_used", f.mq.disabled[0].Reason)

	out, err := f.uc.Login(context.Background(), LoginInput{
		Email:    "jane@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.False(t, out.SecondFactorRequired, "password alone signs in again")
	assert.NotEmpty(t, out.Token)
}

func TestTwoFactorRecoverReplay(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")
	secret, codes := f.enable(t, acc)

	err := f.uc.TwoFactorRecover(context.Background(), TwoFactorRecoverInput{
		Email:        "jane@example.com",
		RecoveryCode: codes[0],
	})
	require.NoError(t, err)

	// Re-enable and replay the consumed code.
	enroll, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err)
	assert.NotEqual(t, secret, enroll.Secret)

	code, err := f.totp.GenerateCode(enroll.Secret, testNow)
	require.NoError(t, err)
	_, err = f.uc.TOTPConfirm(f.authCtx(acc), TOTPConfirmInput{Code: code})
	require.NoError(t, err)

	err = f.uc.TwoFactorRecover(context.Background(), TwoFactorRecoverInput{
		Email:        "jane@example.com",
		RecoveryCode: codes[0],
	})
	requireBusinessError(t, err, "invalid recovery code", goerror.CodeUnauthorized)
}

func TestTwoFactorRecoverWithoutTwoFactor(t *testing.T) {
	f := newFixture(t)
	f.register(t, "jane@example.com", "correct horse battery")

	err := f.uc.TwoFactorRecover(context.Background(), TwoFactorRecoverInput{
		Email:        "jane@example.com",
		RecoveryCode: "Ab1cD-9xY2z",
	})
	requireBusinessError(t, err, "invalid recovery code", goerror.CodeUnauthorized)
}

func TestMutateAccountRetriesLostRace(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	f.store.failSave = 1
	_, err := f.uc.TOTPEnroll(f.authCtx(acc))
	require.NoError(t, err, "a single lost race is retried")

	stored, err := f.store.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.TwoFactorSecret)
}

func TestMutateAccountGivesUpAfterRetry(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	f.store.failSave = 2
	_, err := f.uc.TOTPEnroll(f.authCtx(acc))
	requireBusinessError(t, err, "please retry the request", goerror.CodeConflict)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	acc := f.register(t, "jane@example.com", "correct horse battery")

	out, err := f.uc.Profile(f.authCtx(acc))
	require.NoError(t, err)
	assert.Equal(t, acc.ID, out.ID)
	assert.Equal(t, "jane@example.com", out.Email)
	assert.Equal(t, "None", out.TwoFactorState)

	f.enable(t, acc)

	out, err = f.uc.Profile(f.authCtx(acc))
	require.NoError(t, err)
	assert.True(t, out.TwoFactorEnabled)
	assert.Equal(t, "Active", out.TwoFactorState)
}

func TestProfileDeletedAccount(t *testing.T) {
	f := newFixture(t)

	ctx := jwt.SetAuth(context.Background(), jwt.Claims{AccountID: "gone", Email: "gone@example.com"})
	_, err := f.uc.Profile(ctx)
	requireBusinessError(t, err, "authentication required", goerror.CodeUnauthorized)
}

func TestStoreUnavailableSurfacesAs503(t *testing.T) {
	f := newFixture(t)

	f.uc.repoStore = failingStore{err: fmt.Errorf("%w: dial tcp refused", goerror.ErrUnavailable)}

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email:    "jane@example.com",
		Password: "correct horse battery",
	})

	var ge *goerror.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, goerror.CodeUnavailable, ge.Code())
}

type failingStore struct {
	err error
}

func (f failingStore) FindByEmail(context.Context, string) (*entity.Account, error) {
	return nil, f.err
}

func (f failingStore) FindByID(context.Context, string) (*entity.Account, error) {
	return nil, f.err
}

func (f failingStore) Create(context.Context, entity.Account) error { return f.err }

func (f failingStore) Save(context.Context, entity.Account) error { return f.err }
