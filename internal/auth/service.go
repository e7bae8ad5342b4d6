package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/uploads"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("username or email already exists")
	ErrAccountLocked = errors.New("account is locked due to too many failed login attempts")
)

// ValidationError collects the registration form's failure messages so the
// form can re-render with the full list, not just the first problem.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// RegisterInput carries the registration form fields. ProfilePicture is an
// already-stored upload reference and may be empty.
type RegisterInput struct {
	FullName        string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	MembershipType  entities.MembershipType
	TermsAccepted   bool
	ProfilePicture  string
}

// Service handles registration, authentication and user lookups.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

func validateRegistration(in RegisterInput) []string {
	var msgs []string
	if strings.TrimSpace(in.FullName) == "" {
		msgs = append(msgs, "Full Name is required.")
	}
	switch {
	case in.Username == "":
		msgs = append(msgs, "Username is required.")
	case len(in.Username) < 5 || len(in.Username) > 15:
		msgs = append(msgs, "Username must be between 5 and 15 characters.")
	}
	switch {
	case in.Email == "":
		msgs = append(msgs, "Email is required.")
	case len(in.Email) > 254 || !emailPattern.MatchString(in.Email):
		msgs = append(msgs, "Invalid email format.")
	}
	if in.Password == "" {
		msgs = append(msgs, "Password is required.")
	} else if err := ValidatePassword(in.Password); err != nil {
		msgs = append(msgs, "Password must be at least 8 characters long and contain both letters and numbers.")
	}
	if in.Password != in.ConfirmPassword {
		msgs = append(msgs, "Passwords do not match.")
	}
	if in.MembershipType == "" {
		msgs = append(msgs, "Membership Type is required.")
	} else if !entities.ValidMembershipType(in.MembershipType) {
		msgs = append(msgs, "Membership Type is not recognized.")
	}
	if !in.TermsAccepted {
		msgs = append(msgs, "You must accept the Terms and Conditions.")
	}
	return msgs
}

// Register validates the form and creates a Member account. Validation
// failures come back as a *ValidationError carrying every message; no row
// is written unless all checks pass.
func (s *Service) Register(in RegisterInput) (*entities.User, error) {
	if msgs := validateRegistration(in); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	var existing entities.User
	err := s.db.Where("username = ? OR email = ?", in.Username, in.Email).First(&existing).Error
	if err == nil {
		return nil, &ValidationError{Messages: []string{"Username or email already exists."}}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	picture := in.ProfilePicture
	if picture == "" {
		picture = uploads.DefaultProfilePicture
	}

	user := &entities.User{
		FullName:       strings.TrimSpace(in.FullName),
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   passwordHash,
		Role:           entities.UserRoleMember,
		MembershipType: in.MembershipType,
		ProfilePicture: picture,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CreateAdmin creates an Admin account directly, for the create-admin CLI
// command. The registration form never produces admins.
func (s *Service) CreateAdmin(fullName, username, email, password string) (*entities.User, error) {
	in := RegisterInput{
		FullName:        fullName,
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		MembershipType:  entities.MembershipPublic,
		TermsAccepted:   true,
	}
	if msgs := validateRegistration(in); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	var existing entities.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		FullName:       strings.TrimSpace(fullName),
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           entities.UserRoleAdmin,
		MembershipType: entities.MembershipPublic,
		ProfilePicture: uploads.DefaultProfilePicture,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user. Repeated
// failures lock the account for the configured lockout duration.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(&user)
		return nil, err
	}

	// Successful login - reset failed attempts and update last login
	now := time.Now()
	s.db.Model(&user).Updates(map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})

	return &user, nil
}

// recordFailedLogin increments the failed login counter and locks the
// account once the threshold is reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++

	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		lockedUntil := time.Now().Add(lockoutDuration)
		updates["locked_until"] = lockedUntil
	}

	s.db.Model(user).Updates(updates)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	err := s.db.Model(&entities.User{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
