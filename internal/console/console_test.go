package console

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amir23156/BottleAsec/internal/audit"
	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/metrics"
	"github.com/Amir23156/BottleAsec/internal/tag"
	"github.com/Amir23156/BottleAsec/internal/tag/tagtest"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	console *Console
	store   *tagtest.Store
	trail   *audit.Trail
	clock   *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts, err := NewAccountRegistry(DefaultAccounts(), 0)
	require.NoError(t, err)

	store := tagtest.New()
	trail := audit.NewTrail(nil, log.New(io.Discard, "", 0))
	clk := clock.NewManual(t0)
	c, err := New(store, accounts, trail, Config{TokenSecret: "test-secret-key", TokenTTL: time.Hour},
		clk, log.New(io.Discard, "", 0), metrics.NewRegistry())
	require.NoError(t, err)

	return &fixture{console: c, store: store, trail: trail, clock: clk}
}

func (f *fixture) login(t *testing.T, user, pass string) *Session {
	t.Helper()
	f.console.BeginLogin()
	s, err := f.console.Authenticate(context.Background(), user, pass)
	require.NoError(t, err)
	return s
}

func confirmWith(answer bool) ConfirmFunc {
	return func(Command) bool { return answer }
}

func TestAuthenticateLegacyAccountGetsEmergencyAccess(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, LoggedOut, f.console.State())

	f.console.BeginLogin()
	assert.Equal(t, Authenticating, f.console.State())

	s, err := f.console.Authenticate(context.Background(), "test_user", "test")
	require.NoError(t, err)
	assert.True(t, s.Authenticated)
	assert.True(t, s.EmergencyAccess)
	assert.Equal(t, Legacy, s.Tier)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, t0, s.CreatedAt)
	assert.Equal(t, Authenticated, f.console.State())

	recs := f.trail.RecordsFor("test_user")
	require.Len(t, recs, 1)
	assert.Equal(t, "privileged-access", recs[0].Command)
}

func TestAuthenticateStandardAccount(t *testing.T) {
	f := newFixture(t)

	s := f.login(t, "admin", "password")
	assert.False(t, s.EmergencyAccess)
	assert.Equal(t, Standard, s.Tier)
	assert.Equal(t, 0, f.trail.Len())
}

func TestAuthenticateFailureHasNoLockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		f.console.BeginLogin()
		s, err := f.console.Authenticate(ctx, "test_user", "wrong")
		assert.ErrorIs(t, err, ErrAuthFailure)
		assert.Nil(t, s)
		assert.Equal(t, LoggedOut, f.console.State())
	}

	_, err := f.console.Authenticate(ctx, "nobody", "test")
	assert.ErrorIs(t, err, ErrAuthFailure)

	// still accepted after many failures
	s := f.login(t, "test_user", "test")
	assert.True(t, s.EmergencyAccess)
}

func TestFailedLoginKeepsLiveSessionAuthenticated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.login(t, "admin", "password")
	require.Equal(t, Authenticated, f.console.State())

	// a second terminal fails to log in
	f.console.BeginLogin()
	_, err := f.console.Authenticate(ctx, "admin", "wrong")
	require.ErrorIs(t, err, ErrAuthFailure)
	assert.Equal(t, Authenticated, f.console.State())

	res := f.console.Dispatch(ctx, a, ConveyorStop, Args{})
	assert.Equal(t, Executed, res.Status)
	assert.Equal(t, Authenticated, f.console.State())

	b := f.login(t, "test_user", "test")
	require.NoError(t, f.console.Logout(a))
	assert.Equal(t, Authenticated, f.console.State())
	require.NoError(t, f.console.Logout(b))
	assert.Equal(t, LoggedOut, f.console.State())
}

func TestVerifyToken(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "marie_dupont", "admin2023")

	claims, err := f.console.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "marie_dupont", claims.Subject)
	assert.True(t, claims.EmergencyAccess)
	assert.Equal(t, s.ID, claims.ID)

	_, err = f.console.Verify(s.Token + "x")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	f.clock.Advance(2 * time.Hour)
	_, err = f.console.Verify(s.Token)
	assert.ErrorIs(t, err, ErrNotAuthenticated, "expired token")
}

func TestDispatchWrites(t *testing.T) {
	tests := []struct {
		id   CommandID
		sub  int
		want []Write
	}{
		{FullStop, 0, []Write{{tag.TankInputValve, 0}, {tag.TankOutputValve, 0}, {tag.ConveyorEngine, 0}}},
		{EmergencyDrain, 0, []Write{{tag.TankInputValve, 0}, {tag.TankOutputValve, 1}}},
		{ForcedFill, 0, []Write{{tag.TankInputValve, 1}, {tag.TankOutputValve, 0}}},
		{ConveyorStop, 0, []Write{{tag.ConveyorEngine, 0}}},
		{SafetyLimitOverride, 0, []Write{{tag.TankLevelMax, 10.0}, {tag.BottleLevelMax, 2.5}}},
		{ValveMaintenance, MaintenanceInletOn, []Write{{tag.TankInputValve, 1}}},
		{ValveMaintenance, MaintenanceOutletOn, []Write{{tag.TankOutputValve, 1}}},
		{ValveMaintenance, MaintenanceAllOff, []Write{{tag.TankInputValve, 0}, {tag.TankOutputValve, 0}}},
	}

	for _, tt := range tests {
		cmd, err := LookupCommand(tt.id)
		require.NoError(t, err)
		t.Run(cmd.Name, func(t *testing.T) {
			f := newFixture(t)
			s := f.login(t, "admin", "password")

			res := f.console.Dispatch(context.Background(), s, tt.id, Args{Sub: tt.sub, Confirm: confirmWith(true)})
			require.NoError(t, res.Err)
			assert.Equal(t, Executed, res.Status)
			assert.Equal(t, tt.want, res.Writes)

			var got []Write
			for _, w := range f.store.Writes() {
				got = append(got, Write{w.Tag, w.Value})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatchDestructiveWithoutConfirmation(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "admin", "password")
	ctx := context.Background()

	for _, id := range []CommandID{EmergencyDrain, ForcedFill, SafetyLimitOverride, ValveMaintenance} {
		res := f.console.Dispatch(ctx, s, id, Args{Sub: MaintenanceInletOn})
		assert.Equal(t, Cancelled, res.Status, id)
		assert.Empty(t, res.Writes)

		res = f.console.Dispatch(ctx, s, id, Args{Sub: MaintenanceInletOn, Confirm: confirmWith(false)})
		assert.Equal(t, Cancelled, res.Status, id)
	}
	assert.Empty(t, f.store.Writes())

	// every cancelled dispatch is still audited
	recs := f.trail.RecordsFor("admin")
	require.Len(t, recs, 8)
	for _, r := range recs {
		assert.Equal(t, "cancelled", r.Outcome)
	}
}

func TestDispatchNonDestructiveNeedsNoConfirmation(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "admin", "password")

	res := f.console.Dispatch(context.Background(), s, ConveyorStop, Args{})
	assert.Equal(t, Executed, res.Status)
}

func TestDispatchEmergencyAccessBypassesConfirmation(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "john_smith", "123456")

	asked := false
	res := f.console.Dispatch(context.Background(), s, SafetyLimitOverride, Args{
		Confirm: func(Command) bool { asked = true; return false },
	})
	assert.Equal(t, Executed, res.Status)
	assert.False(t, asked)

	v, err := f.store.Read(context.Background(), tag.TankLevelMax)
	require.NoError(t, err)
	assert.Equal(t, OverrideTankMax, v)
}

func TestDispatchRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.login(t, "admin", "password")

	res := f.console.Dispatch(ctx, nil, FullStop, Args{})
	assert.Equal(t, Rejected, res.Status)
	assert.ErrorIs(t, res.Err, ErrNotAuthenticated)

	res = f.console.Dispatch(ctx, s, CommandID(7), Args{})
	assert.Equal(t, Rejected, res.Status)
	assert.ErrorIs(t, res.Err, ErrUnknownCommand)

	res = f.console.Dispatch(ctx, s, ValveMaintenance, Args{Sub: 4, Confirm: confirmWith(true)})
	assert.Equal(t, Rejected, res.Status)
	assert.ErrorIs(t, res.Err, ErrInvalidChoice)

	forged := *s
	forged.EmergencyAccess = true
	res = f.console.Dispatch(ctx, &forged, SafetyLimitOverride, Args{})
	assert.Equal(t, Rejected, res.Status)
	assert.ErrorIs(t, res.Err, ErrNotAuthenticated)

	require.NoError(t, f.console.Logout(s))
	assert.Equal(t, LoggedOut, f.console.State())
	res = f.console.Dispatch(ctx, s, FullStop, Args{})
	assert.ErrorIs(t, res.Err, ErrNotAuthenticated)

	assert.Empty(t, f.store.Writes())

	recs := f.trail.Records()
	require.Len(t, recs, 5)
	assert.Equal(t, "unknown", recs[0].Username)
	assert.Equal(t, "command-7", recs[1].Command)
	assert.Equal(t, "valve-maintenance", recs[2].Command)
	for _, r := range recs {
		assert.Equal(t, "rejected", r.Outcome)
	}
}

func TestDispatchTransportFailure(t *testing.T) {
	f := newFixture(t)
	s := f.login(t, "admin", "password")
	f.store.FailWrite(tag.TankOutputValve, tag.ErrStaleRead)

	res := f.console.Dispatch(context.Background(), s, FullStop, Args{})
	assert.Equal(t, Failed, res.Status)
	assert.ErrorIs(t, res.Err, tag.ErrStaleRead)
	assert.Equal(t, []Write{{tag.TankInputValve, 0}}, res.Writes)

	recs := f.trail.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "failed", recs[0].Outcome)
	assert.NotEmpty(t, recs[0].Detail)
}

func TestPurgeAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.login(t, "admin", "password")
	f.console.Dispatch(ctx, admin, FullStop, Args{})

	_, err := f.console.PurgeAudit(ctx, admin, "admin")
	assert.ErrorIs(t, err, ErrForbidden)
	require.Len(t, f.trail.RecordsFor("admin"), 2, "denied purge is audited")

	legacy := f.login(t, "test_user", "test")
	f.console.Dispatch(ctx, legacy, SafetyLimitOverride, Args{})
	require.Len(t, f.trail.RecordsFor("test_user"), 2)

	removed, err := f.console.PurgeAudit(ctx, legacy, "test_user")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, f.trail.RecordsFor("test_user"))
	assert.Len(t, f.trail.RecordsFor("admin"), 2)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	f.store.Set(tag.TankLevel, 6.9)
	f.store.Set(tag.ConveyorEngine, 1)

	st, err := f.console.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6.9, st.TankLevel)
	assert.True(t, st.InletOpen)
	assert.False(t, st.OutletOpen)
	assert.True(t, st.ConveyorOn)
	assert.Equal(t, "HIGH", LevelFlag(st.TankLevel))
	assert.Equal(t, "LOW", LevelFlag(3.0))
	assert.Equal(t, "normal", LevelFlag(5.0))
}

func TestNewRequiresSecret(t *testing.T) {
	accounts, err := NewAccountRegistry(DefaultAccounts(), 0)
	require.NoError(t, err)

	_, err = New(tag.NewMemory(), accounts, nil, Config{}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(tag.NewMemory(), nil, nil, Config{TokenSecret: "s"}, nil, nil, nil)
	assert.Error(t, err)
}

func TestAccountRegistry(t *testing.T) {
	_, err := NewAccountRegistry([]Account{{Username: "a", Password: "x"}, {Username: "a", Password: "y"}}, 0)
	assert.Error(t, err)

	r, err := NewAccountRegistry(DefaultAccounts(), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())
	assert.True(t, r.IsLegacy("john_smith"))
	assert.False(t, r.IsLegacy("admin"))
	assert.False(t, r.IsLegacy("nobody"))
}
