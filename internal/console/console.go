package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Amir23156/BottleAsec/internal/audit"
	"github.com/Amir23156/BottleAsec/internal/clock"
	"github.com/Amir23156/BottleAsec/internal/metrics"
	"github.com/Amir23156/BottleAsec/internal/tag"
)

// Config holds the session token settings.
type Config struct {
	TokenSecret string
	TokenTTL    time.Duration
}

// Status is the outcome of a dispatched command.
type Status int

const (
	Executed Status = iota
	Cancelled
	Rejected
	Failed
)

func (s Status) String() string {
	switch s {
	case Executed:
		return "executed"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConfirmFunc asks the operator to confirm a destructive command.
type ConfirmFunc func(Command) bool

// Args are the per-dispatch arguments.
type Args struct {
	// Sub is the valve maintenance option.
	Sub     int
	Confirm ConfirmFunc
}

// CommandResult reports what a dispatch did.
type CommandResult struct {
	Command CommandID
	Status  Status
	Writes  []Write
	Err     error
}

// Console is the operator console. It models one terminal: a single login
// state, but sessions stay valid until logged out.
type Console struct {
	store    tag.Store
	accounts *AccountRegistry
	trail    *audit.Trail
	cfg      Config
	secret   []byte
	clock    clock.Clock
	logger   *log.Logger
	metrics  *metrics.Registry

	mu       sync.Mutex
	state    State
	sessions map[string]*Session
}

// New creates a console in LoggedOut state.
func New(store tag.Store, accounts *AccountRegistry, trail *audit.Trail, cfg Config, clk clock.Clock, logger *log.Logger, m *metrics.Registry) (*Console, error) {
	if accounts == nil {
		return nil, errors.New("account registry is required")
	}
	if cfg.TokenSecret == "" {
		return nil, errors.New("HS256 requires secret key")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
	if trail == nil {
		trail = audit.NewTrail(nil, logger)
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Console{
		store:    store,
		accounts: accounts,
		trail:    trail,
		cfg:      cfg,
		secret:   []byte(cfg.TokenSecret),
		clock:    clk,
		logger:   logger,
		metrics:  m,
		state:    LoggedOut,
		sessions: make(map[string]*Session),
	}, nil
}

// State returns the login state.
func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Trail returns the audit trail the console appends to.
func (c *Console) Trail() *audit.Trail {
	return c.trail
}

// BeginLogin moves a logged out console to Authenticating.
func (c *Console) BeginLogin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == LoggedOut {
		c.state = Authenticating
	}
}

// Authenticate checks a credential pair. There is no attempt counter; a
// failure returns the console to LoggedOut unless another session is still
// live, and another attempt may follow.
func (c *Console) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	legacy, ok := c.accounts.Check(username, password)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		c.settleState()
		c.metrics.RecordAuth(false, false)
		c.logger.Printf("console: authentication failed for %q", username)
		return nil, ErrAuthFailure
	}

	s := &Session{
		ID:            uuid.NewString(),
		Username:      username,
		Authenticated: true,
		Tier:          Standard,
		CreatedAt:     c.clock.Now(),
	}
	if legacy {
		s.Tier = Legacy
		s.EmergencyAccess = true
	}

	token, err := c.issueToken(s)
	if err != nil {
		c.settleState()
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.Token = token

	c.sessions[s.ID] = s
	c.state = Authenticated
	c.metrics.RecordAuth(true, legacy)
	c.logger.Printf("console: %s logged in (tier %s)", username, s.Tier)

	if legacy {
		c.logger.Printf("console: privileged access granted to legacy account %s", username)
		c.trail.Append(audit.Record{
			Timestamp: s.CreatedAt,
			Username:  username,
			Command:   "privileged-access",
			Outcome:   "granted",
		})
	}

	cp := *s
	return &cp, nil
}

// Logout destroys the session.
func (c *Console) Logout(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s == nil {
		return ErrNotAuthenticated
	}
	if _, ok := c.sessions[s.ID]; !ok {
		return ErrNotAuthenticated
	}
	delete(c.sessions, s.ID)
	c.settleState()
	c.metrics.RecordLogout()
	c.logger.Printf("console: %s logged out", s.Username)
	return nil
}

// Dispatch executes a command on behalf of s.
func (c *Console) Dispatch(ctx context.Context, s *Session, id CommandID, args Args) CommandResult {
	res := CommandResult{Command: id}
	name := fmt.Sprintf("command-%d", int(id))
	username := "unknown"
	if s != nil {
		username = s.Username
	}

	defer func() {
		c.record(username, name, res)
	}()

	if err := c.validate(s); err != nil {
		res.Status = Rejected
		res.Err = err
		return res
	}

	cmd, err := LookupCommand(id)
	if err != nil {
		res.Status = Rejected
		res.Err = err
		return res
	}
	name = cmd.Name

	if cmd.Destructive {
		if s.EmergencyAccess {
			c.logger.Printf("console: confirmation bypassed for %s by legacy account %s", cmd.Name, s.Username)
		} else if args.Confirm == nil || !args.Confirm(cmd) {
			res.Status = Cancelled
			return res
		}
	}

	writes, err := cmd.Writes(args)
	if err != nil {
		res.Status = Rejected
		res.Err = err
		return res
	}

	for _, w := range writes {
		if err := c.store.Write(ctx, w.Tag, w.Value); err != nil {
			res.Status = Failed
			res.Err = err
			return res
		}
		res.Writes = append(res.Writes, w)
	}

	res.Status = Executed
	c.logger.Printf("console: %s executed by %s", cmd.Name, s.Username)
	return res
}

// PurgeAudit removes the trail records of username. Only emergency access
// sessions may purge, and a successful purge is not itself recorded.
func (c *Console) PurgeAudit(ctx context.Context, s *Session, username string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := c.validate(s); err != nil {
		return 0, err
	}
	if !s.EmergencyAccess {
		c.trail.Append(audit.Record{
			Timestamp: c.clock.Now(),
			Username:  s.Username,
			Command:   "purge-audit",
			Outcome:   Rejected.String(),
			Detail:    ErrForbidden.Error(),
		})
		return 0, ErrForbidden
	}

	removed := c.trail.Purge(username)
	c.metrics.RecordAuditPurge()
	c.logger.Printf("console: %s purged %d audit records of %s", s.Username, removed, username)
	return removed, nil
}

// PanelStatus is the live process view shown on the panel.
type PanelStatus struct {
	TankLevel   float64
	TankMax     float64
	InletOpen   bool
	OutletOpen  bool
	BottleLevel float64
	BottleMax   float64
	ConveyorOn  bool
}

// Status reads the panel values.
func (c *Console) Status(ctx context.Context) (PanelStatus, error) {
	var st PanelStatus
	reads := []struct {
		id  tag.ID
		dst *float64
	}{
		{tag.TankLevel, &st.TankLevel},
		{tag.TankLevelMax, &st.TankMax},
		{tag.BottleLevel, &st.BottleLevel},
		{tag.BottleLevelMax, &st.BottleMax},
	}
	for _, r := range reads {
		v, err := c.store.Read(ctx, r.id)
		if err != nil {
			return st, err
		}
		*r.dst = v
	}

	flags := []struct {
		id  tag.ID
		dst *bool
	}{
		{tag.TankInputValve, &st.InletOpen},
		{tag.TankOutputValve, &st.OutletOpen},
		{tag.ConveyorEngine, &st.ConveyorOn},
	}
	for _, f := range flags {
		v, err := c.store.Read(ctx, f.id)
		if err != nil {
			return st, err
		}
		*f.dst = v != 0
	}
	return st, nil
}

// settleState derives the login state from the live sessions after a failed
// attempt or a logout. Caller holds c.mu.
func (c *Console) settleState() {
	if len(c.sessions) > 0 {
		c.state = Authenticated
		return
	}
	c.state = LoggedOut
}

// validate checks that s is a live session with a valid token
func (c *Console) validate(s *Session) error {
	if s == nil || !s.Authenticated {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	live, ok := c.sessions[s.ID]
	c.mu.Unlock()
	if !ok {
		return ErrNotAuthenticated
	}

	claims, err := c.Verify(s.Token)
	if err != nil {
		return err
	}
	if claims.ID != live.ID || claims.Subject != live.Username || claims.EmergencyAccess != live.EmergencyAccess {
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Console) record(username, command string, res CommandResult) {
	rec := audit.Record{
		Timestamp: c.clock.Now(),
		Username:  username,
		Command:   command,
		Outcome:   res.Status.String(),
	}
	if res.Err != nil {
		rec.Detail = res.Err.Error()
	}
	c.trail.Append(rec)
	c.metrics.RecordCommand(command, res.Status.String())

	if res.Status == Failed {
		c.logger.Printf("console: %s by %s failed: %v", command, username, res.Err)
	}
}
