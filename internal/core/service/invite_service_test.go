package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

// stubInviteRepo is an in-memory invite store with the same conditional
// UpdateStatus semantics as the Mongo implementation, safe for concurrent
// use so redemption races can be exercised.
type stubInviteRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Invite
	inserts int
}

func newStubInviteRepo() *stubInviteRepo {
	return &stubInviteRepo{byID: make(map[string]*domain.Invite)}
}

func (r *stubInviteRepo) Insert(_ context.Context, invite *domain.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	clone := *invite
	r.byID[invite.ID] = &clone
	return nil
}

func (r *stubInviteRepo) FindByToken(_ context.Context, token string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.byID {
		if i.Token == token {
			clone := *i
			return &clone, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (r *stubInviteRepo) FindByID(_ context.Context, id string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byID[id]; ok {
		clone := *i
		return &clone, nil
	}
	return nil, domain.ErrInviteNotFound
}

func (r *stubInviteRepo) FindPendingByEmail(_ context.Context, email string) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.byID {
		if i.Email == email && i.Status == domain.InvitePending {
			clone := *i
			return &clone, nil
		}
	}
	return nil, domain.ErrInviteNotFound
}

func (r *stubInviteRepo) UpdateStatus(_ context.Context, id string, expected, next domain.InviteStatus, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrInviteNotFound
	}
	if i.Status != expected {
		return domain.ErrInviteAlreadyUsed
	}
	i.Status = next
	if at, ok := fields["accepted_at"].(time.Time); ok {
		i.AcceptedAt = &at
	}
	return nil
}

func (r *stubInviteRepo) ListByStatus(_ context.Context, status domain.InviteStatus) ([]domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invite
	for _, i := range r.byID {
		if status == "" || i.Status == status {
			out = append(out, *i)
		}
	}
	return out, nil
}

// stubUserRepo is an in-memory directory with unique-email enforcement.
type stubUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	clone := *user
	clone.ID = "user_" + strconv.Itoa(r.nextID)
	r.byEmail[clone.Email] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			if active, ok := fields["is_active"].(bool); ok {
				u.IsActive = active
			}
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ListByRole(_ context.Context, role string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.byEmail {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

// stubNotifier records sends and can be told to fail.
type stubNotifier struct {
	mu    sync.Mutex
	sends []ports.NotificationKind
	fail  bool
}

func (n *stubNotifier) Send(_ context.Context, kind ports.NotificationKind, _ string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, kind)
	if n.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (n *stubNotifier) kinds() []ports.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.NotificationKind(nil), n.sends...)
}

func newInviteFixture() (*InviteService, *stubInviteRepo, *stubUserRepo, *stubNotifier) {
	invites := newStubInviteRepo()
	users := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := NewInviteService(invites, users, notifier, 7, "owner@pawacademy.dog", "https://app.pawacademy.dog", zerolog.Nop())
	return svc, invites, users, notifier
}

func validCreateInput() ports.CreateInviteInput {
	return ports.CreateInviteInput{
		Email:       "trainer@example.com",
		FirstName:   "Dana",
		LastName:    "Reyes",
		Role:        domain.RoleTrainer,
		Specialties: []string{"agility", "puppy basics"},
		CreatedBy:   "admin_1",
	}
}

func TestInviteService_CreateInvite_Success(t *testing.T) {
	svc, _, _, notifier := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	if invite.Status != domain.InvitePending {
		t.Fatalf("expected pending, got %s", invite.Status)
	}
	if invite.Token == "" || len(invite.Token) < 40 {
		t.Fatalf("expected a long random token, got %q", invite.Token)
	}
	if invite.Role != domain.RoleTrainer {
		t.Fatalf("unexpected role: %s", invite.Role)
	}
	if got := time.Until(invite.ExpiresAt); got < 6*24*time.Hour || got > 8*24*time.Hour {
		t.Fatalf("expected ~7 day expiry, got %v", got)
	}
	if kinds := notifier.kinds(); len(kinds) != 1 || kinds[0] != ports.NotifyInvite {
		t.Fatalf("expected one invite notification, got %v", kinds)
	}
}

func TestInviteService_CreateInvite_InvalidInput(t *testing.T) {
	svc, invites, _, _ := newInviteFixture()

	cases := []ports.CreateInviteInput{
		{},
		{Email: "not-an-email", FirstName: "A", LastName: "B", Role: domain.RoleTrainer, CreatedBy: "admin_1"},
		{Email: "x@example.com", FirstName: "A", LastName: "B", Role: domain.RoleClient, CreatedBy: "admin_1"},
		{Email: "x@example.com", FirstName: "A", LastName: "B", Role: domain.RoleTrainer},
	}

	for i, in := range cases {
		if _, err := svc.CreateInvite(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	// Invalid input must never reach the store: no token was allocated,
	// nothing was written.
	if invites.inserts != 0 {
		t.Fatalf("expected no inserts for invalid input, got %d", invites.inserts)
	}
}

func TestInviteService_CreateInvite_DuplicatePendingRejected(t *testing.T) {
	svc, _, _, _ := newInviteFixture()

	if _, err := svc.CreateInvite(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	if _, err := svc.CreateInvite(context.Background(), validCreateInput()); !errors.Is(err, domain.ErrDuplicateInvite) {
		t.Fatalf("expected ErrDuplicateInvite, got %v", err)
	}
}

func TestInviteService_CreateInvite_ExistingUserRejected(t *testing.T) {
	svc, _, users, _ := newInviteFixture()

	if _, err := users.Create(context.Background(), &domain.User{Email: "trainer@example.com", Role: domain.RoleClient, IsActive: true}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := svc.CreateInvite(context.Background(), validCreateInput()); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestInviteService_ValidateInvite_NotFound(t *testing.T) {
	svc, _, _, _ := newInviteFixture()

	if _, err := svc.ValidateInvite(context.Background(), "missing"); !errors.Is(err, domain.ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound, got %v", err)
	}
	if _, err := svc.ValidateInvite(context.Background(), ""); !errors.Is(err, domain.ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound for empty token, got %v", err)
	}
}

func TestInviteService_ValidateInvite_LazyExpiry(t *testing.T) {
	svc, invites, _, _ := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	// Jump past the expiry window.
	svc.now = func() time.Time { return time.Now().UTC().Add(8 * 24 * time.Hour) }

	if _, err := svc.ValidateInvite(context.Background(), invite.Token); !errors.Is(err, domain.ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}

	// The expiry was persisted, so a direct read now sees the terminal state.
	stored, err := invites.FindByID(context.Background(), invite.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != domain.InviteExpired {
		t.Fatalf("expected stored status expired, got %s", stored.Status)
	}

	// And the expired invite can no longer be redeemed.
	if _, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Abc12345"}); !errors.Is(err, domain.ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired on accept, got %v", err)
	}
}

func TestInviteService_AcceptInvite_Success(t *testing.T) {
	svc, invites, users, notifier := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	validated, err := svc.ValidateInvite(context.Background(), invite.Token)
	if err != nil {
		t.Fatalf("ValidateInvite: %v", err)
	}
	if validated.FirstName != "Dana" || validated.LastName != "Reyes" || validated.Email != "trainer@example.com" {
		t.Fatalf("unexpected validated invite: %+v", validated)
	}

	user, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Abc12345"})
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}

	if user.Role != domain.RoleTrainer {
		t.Fatalf("expected trainer role, got %s", user.Role)
	}
	if !user.IsActive {
		t.Fatalf("expected active account")
	}
	if user.PasswordHash == "Abc12345" || user.PasswordHash == "" {
		t.Fatalf("expected hashed password")
	}

	stored, err := invites.FindByID(context.Background(), invite.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != domain.InviteAccepted || stored.AcceptedAt == nil {
		t.Fatalf("expected accepted invite with accepted_at, got %+v", stored)
	}

	if _, err := users.FindByEmail(context.Background(), "trainer@example.com"); err != nil {
		t.Fatalf("account was not created: %v", err)
	}

	// invite + welcome + admin notification
	kinds := notifier.kinds()
	if len(kinds) != 3 || kinds[1] != ports.NotifyWelcome || kinds[2] != ports.NotifyAdminNewStaff {
		t.Fatalf("unexpected notifications: %v", kinds)
	}
}

func TestInviteService_AcceptInvite_SecondRedemptionFails(t *testing.T) {
	svc, _, users, _ := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	if _, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Abc12345"}); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Other999"}); !errors.Is(err, domain.ErrInviteAlreadyUsed) {
		t.Fatalf("expected ErrInviteAlreadyUsed, got %v", err)
	}

	trainers, _ := users.ListByRole(context.Background(), domain.RoleTrainer)
	if len(trainers) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(trainers))
	}
}

func TestInviteService_AcceptInvite_ConcurrentRedemption(t *testing.T) {
	svc, _, users, _ := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Abc12345"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrInviteAlreadyUsed):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", attempts-1, successes, conflicts)
	}

	trainers, _ := users.ListByRole(context.Background(), domain.RoleTrainer)
	if len(trainers) != 1 {
		t.Fatalf("expected exactly one account after race, got %d", len(trainers))
	}
}

func TestInviteService_AcceptInvite_NotifierFailureDoesNotUnwind(t *testing.T) {
	svc, invites, users, notifier := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	notifier.fail = true

	user, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Abc12345"})
	if err != nil {
		t.Fatalf("accept must succeed despite notifier failure: %v", err)
	}
	if user == nil || user.Role != domain.RoleTrainer {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored, _ := invites.FindByID(context.Background(), invite.ID)
	if stored.Status != domain.InviteAccepted {
		t.Fatalf("accept was unwound: %s", stored.Status)
	}
	if _, err := users.FindByEmail(context.Background(), "trainer@example.com"); err != nil {
		t.Fatalf("account creation was unwound: %v", err)
	}
}

func TestInviteService_CancelInvite(t *testing.T) {
	svc, invites, _, _ := newInviteFixture()

	invite, err := svc.CreateInvite(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	if err := svc.CancelInvite(context.Background(), invite.ID, "admin_1"); err != nil {
		t.Fatalf("CancelInvite: %v", err)
	}

	stored, _ := invites.FindByID(context.Background(), invite.ID)
	if stored.Status != domain.InviteCancelled {
		t.Fatalf("expected cancelled, got %s", stored.Status)
	}

	// Cancelling a terminal invite fails cleanly.
	if err := svc.CancelInvite(context.Background(), invite.ID, "admin_1"); !errors.Is(err, domain.ErrInviteAlreadyUsed) {
		t.Fatalf("expected ErrInviteAlreadyUsed, got %v", err)
	}
	// And a cancelled token cannot be redeemed.
	if _, err := svc.AcceptInvite(context.Background(), invite.Token, ports.AcceptInviteInput{Password: "Abc12345"}); !errors.Is(err, domain.ErrInviteAlreadyUsed) {
		t.Fatalf("expected ErrInviteAlreadyUsed on redeem, got %v", err)
	}

	if err := svc.CancelInvite(context.Background(), "missing", "admin_1"); !errors.Is(err, domain.ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound, got %v", err)
	}
}
