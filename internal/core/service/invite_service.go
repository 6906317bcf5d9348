package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

const inviteTokenBytes = 32 // 256-bit bearer secret

// InviteService implements the invite lifecycle state machine.
type InviteService struct {
	invites  ports.InviteRepository
	users    ports.UserRepository
	notifier ports.Notifier
	expiry   time.Duration
	adminTo  string
	baseURL  string
	log      zerolog.Logger
	now      func() time.Time
}

// NewInviteService wires the lifecycle. expiryDays bounds how long an invite
// stays redeemable (default 7). adminTo receives new-staff notifications;
// baseURL is the public prefix for invite links in outbound email.
func NewInviteService(
	invites ports.InviteRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	expiryDays int,
	adminTo string,
	baseURL string,
	log zerolog.Logger,
) *InviteService {
	if expiryDays <= 0 {
		expiryDays = 7
	}
	return &InviteService{
		invites:  invites,
		users:    users,
		notifier: notifier,
		expiry:   time.Duration(expiryDays) * 24 * time.Hour,
		adminTo:  adminTo,
		baseURL:  baseURL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvite validates input, rejects duplicates, and persists a pending
// invite. A second invite to a still-pending email is rejected rather than
// superseding the first; the admin must cancel the old one explicitly.
// No token is allocated until the input has passed validation.
func (s *InviteService) CreateInvite(ctx context.Context, in ports.CreateInviteInput) (*domain.Invite, error) {
	if err := validateInviteInput(in); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if err != domain.ErrUserNotFound {
		return nil, err
	}
	if _, err := s.invites.FindPendingByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateInvite
	} else if err != domain.ErrInviteNotFound {
		return nil, err
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	invite := &domain.Invite{
		ID:          uuid.NewString(),
		Email:       email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        in.Role,
		Token:       token,
		Specialties: in.Specialties,
		Status:      domain.InvitePending,
		ExpiresAt:   now.Add(s.expiry),
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
	}

	if err := s.invites.Insert(ctx, invite); err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, ports.NotifyInvite, invite.Email, map[string]string{
		"first_name": invite.FirstName,
		"role":       invite.Role,
		"link":       s.baseURL + "/invites/" + invite.Token,
		"expires_at": invite.ExpiresAt.Format(time.RFC1123),
	}); err != nil {
		s.log.Warn().Err(err).Str("invite_id", invite.ID).Msg("invite email failed")
	}

	s.log.Info().
		Str("invite_id", invite.ID).
		Str("role", invite.Role).
		Str("created_by", invite.CreatedBy).
		Msg("invite created")

	return invite, nil
}

// ValidateInvite looks up an invite by token and checks it is redeemable.
// A pending invite past its expiry is flipped to expired as a side effect,
// so later reads see the terminal state directly.
func (s *InviteService) ValidateInvite(ctx context.Context, token string) (*domain.Invite, error) {
	if token == "" {
		return nil, domain.ErrInviteNotFound
	}

	invite, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch invite.Status {
	case domain.InvitePending:
		if invite.TimeExpired(s.now()) {
			// Lazy transition on read. Losing the write race here just
			// means another reader already flipped it.
			if err := s.invites.UpdateStatus(ctx, invite.ID, domain.InvitePending, domain.InviteExpired, nil); err != nil && err != domain.ErrInviteAlreadyUsed {
				s.log.Warn().Err(err).Str("invite_id", invite.ID).Msg("failed to persist invite expiry")
			}
			return nil, domain.ErrInviteExpired
		}
		return invite, nil
	case domain.InviteExpired:
		return nil, domain.ErrInviteExpired
	default: // accepted or cancelled
		return nil, domain.ErrInviteAlreadyUsed
	}
}

// AcceptInvite redeems a pending invite exactly once and creates the staff
// account. The conditional pending->accepted write is the atomic claim: of
// two concurrent redemptions, one wins the flip and the other sees
// ErrInviteAlreadyUsed. The created account's role comes from the stored
// invite, never from the redemption request.
func (s *InviteService) AcceptInvite(ctx context.Context, token string, in ports.AcceptInviteInput) (*domain.User, error) {
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	invite, err := s.ValidateInvite(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.invites.UpdateStatus(ctx, invite.ID, domain.InvitePending, domain.InviteAccepted, map[string]any{
		"accepted_at": now,
	}); err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        invite.Email,
		FirstName:    invite.FirstName,
		LastName:     invite.LastName,
		PasswordHash: string(hash),
		Role:         invite.Role,
		Specialties:  invite.Specialties,
		Phone:        in.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		// The invite is already consumed; surface the conflict rather than
		// pretending the token is still live.
		s.log.Error().Err(err).Str("invite_id", invite.ID).Msg("account creation failed after invite claim")
		return nil, err
	}

	s.notifyAccepted(ctx, invite, created)

	s.log.Info().
		Str("invite_id", invite.ID).
		Str("user_id", created.ID).
		Str("role", created.Role).
		Msg("invite accepted")

	return created, nil
}

// notifyAccepted fires the welcome and admin notifications. Both are
// courtesy sends: the account already exists and stays valid either way.
func (s *InviteService) notifyAccepted(ctx context.Context, invite *domain.Invite, user *domain.User) {
	if err := s.notifier.Send(ctx, ports.NotifyWelcome, user.Email, map[string]string{
		"first_name": user.FirstName,
		"role":       user.Role,
	}); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("welcome email failed")
	}

	if s.adminTo == "" {
		return
	}
	if err := s.notifier.Send(ctx, ports.NotifyAdminNewStaff, s.adminTo, map[string]string{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"role":       user.Role,
	}); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("admin notification failed")
	}
}

// CancelInvite transitions a pending invite to cancelled. Cancelling an
// invite that is already terminal fails with ErrInviteAlreadyUsed.
func (s *InviteService) CancelInvite(ctx context.Context, id, byAdminID string) error {
	if err := s.invites.UpdateStatus(ctx, id, domain.InvitePending, domain.InviteCancelled, nil); err != nil {
		return err
	}
	s.log.Info().Str("invite_id", id).Str("cancelled_by", byAdminID).Msg("invite cancelled")
	return nil
}

// ListInvites returns invites for the admin dashboard, optionally filtered
// by status.
func (s *InviteService) ListInvites(ctx context.Context, status domain.InviteStatus) ([]domain.Invite, error) {
	return s.invites.ListByStatus(ctx, status)
}

func validateInviteInput(in ports.CreateInviteInput) error {
	if in.Email == "" || in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: email, first name and last name are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if in.Role != domain.RoleTrainer && in.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: role must be trainer or admin", domain.ErrValidation)
	}
	if in.CreatedBy == "" {
		return fmt.Errorf("%w: creating admin id is required", domain.ErrValidation)
	}
	return nil
}

// generateInviteToken returns a URL-safe random token. Invite tokens carry
// no signature or embedded expiry; they are opaque bearer secrets whose
// lifetime lives in stored state.
func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
