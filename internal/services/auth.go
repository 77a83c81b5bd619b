package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventmanager/internal/domain"
)

const minPasswordLen = 8

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[\w.@+-]{1,150}$`)
)

type authService struct {
	userRepo     domain.UserRepository
	groupRepo    domain.GroupRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	activation   domain.ActivationTokens
	resets       domain.PasswordResetTokens
	emailService domain.EmailService
	siteURL      string
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService creates an AuthService. siteURL prefixes activation and
// password reset links.
func NewAuthService(
	userRepo domain.UserRepository,
	groupRepo domain.GroupRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	activation domain.ActivationTokens,
	resets domain.PasswordResetTokens,
	emailService domain.EmailService,
	siteURL string,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:     userRepo,
		groupRepo:    groupRepo,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		activation:   activation,
		resets:       resets,
		emailService: emailService,
		siteURL:      strings.TrimSuffix(siteURL, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

// SignUp registers an inactive participant and mails the activation link.
func (s *authService) SignUp(ctx context.Context, in *domain.SignUpInput) (*domain.User, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: missing signup data", domain.ErrInvalidInput)
	}
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !usernameRegexp.MatchString(username) {
		return nil, fmt.Errorf("%w: username may contain only letters, digits and @/./+/-/_", domain.ErrInvalidInput)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	// Activation tokens cover updated_at, which must survive a round trip
	// through timestamptz unchanged.
	now := s.now().Truncate(time.Microsecond)
	user := domain.NewUser(username, email, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), now)
	user.PasswordHash = hash
	user.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	group, err := s.groupRepo.GetByName(ctx, domain.RoleParticipant)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s group: %w", domain.RoleParticipant, err)
	}
	if err := s.groupRepo.AddMember(ctx, user.ID, group.ID); err != nil {
		return nil, fmt.Errorf("failed to assign group: %w", err)
	}
	user.Roles = []domain.Role{domain.RoleParticipant}

	s.sendActivation(ctx, user)
	return user, nil
}

func (s *authService) sendActivation(ctx context.Context, user *domain.User) {
	token, err := s.activation.Make(user)
	if err != nil {
		s.logger.Warn("activation token not created", "user_id", user.ID, "error", err)
		return
	}
	data := &domain.ActivationEmailData{
		Email:          user.Email,
		Name:           user.DisplayName(),
		ActivationLink: fmt.Sprintf("%s/auth/activate/%s/%s", s.siteURL, user.ID, token),
	}
	if err := s.emailService.SendActivation(ctx, data); err != nil {
		s.logger.Warn("activation email not sent", "user_id", user.ID, "error", err)
	}
}

// Activate flips the account to active. Every failure is reported as
// ErrInvalidActivationToken.
func (s *authService) Activate(ctx context.Context, userID, token string) (*domain.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrInvalidActivationToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidActivationToken
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !s.activation.Check(user, token) {
		return nil, domain.ErrInvalidActivationToken
	}
	if err := s.userRepo.SetActive(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}
	user.IsActive = true
	if user.Roles, err = s.groupRepo.ListByUserID(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return user, nil
}

// Login accepts a username or an email address.
func (s *authService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrInactiveAccount
	}

	if user.Roles, err = s.groupRepo.ListByUserID(ctx, user.ID); err != nil {
		return "", nil, fmt.Errorf("failed to load roles: %w", err)
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Roles)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("last login not recorded", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}
	return token, user, nil
}

// RequestPasswordReset mails a reset link when email belongs to an active
// account. Unknown and inactive addresses get the same nil result so the
// endpoint does not reveal which accounts exist.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug("password reset for unknown email")
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive || !strings.EqualFold(user.Email, email) {
		return nil
	}

	token, err := s.resets.Make(user)
	if err != nil {
		return fmt.Errorf("make reset token: %w", err)
	}
	data := &domain.PasswordResetEmailData{
		Email:     user.Email,
		Name:      user.DisplayName(),
		ResetLink: fmt.Sprintf("%s/auth/password-reset/%s/%s", s.siteURL, user.ID, token),
	}
	if err := s.emailService.SendPasswordReset(ctx, data); err != nil {
		s.logger.Warn("password reset email not sent", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword sets a new password from a mailed reset link. Every link
// failure is reported as ErrInvalidResetToken. The new password changes the
// hash the token was bound to, so a link works once.
func (s *authService) ResetPassword(ctx context.Context, userID, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrInvalidResetToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidResetToken
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive || !s.resets.Check(user, token) {
		return domain.ErrInvalidResetToken
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

// ChangePassword replaces the password of a signed-in user after checking the
// current one.
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidInput)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if newPassword == oldPassword {
		return fmt.Errorf("%w: new password must differ from the current one", domain.ErrInvalidInput)
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *authService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.SetPassword(ctx, userID, hash, s.now().Truncate(time.Microsecond)); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	return nil
}
