// Package auth implements email/password and Google sign-in, server-side
// sessions, and the identity-change broadcast other components listen on.
package auth

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/kautilyalaw/core/internal/database"
	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/pkg/authstate"
	sessionpkg "github.com/kautilyalaw/core/internal/pkg/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	verifier GoogleVerifier
	notifier authstate.Notifier
	log      *zap.Logger
	ttl      time.Duration
}

func NewService(db *gorm.DB, verifier GoogleVerifier, notifier authstate.Notifier, log *zap.Logger, ttl time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = sessionpkg.DefaultTTL
	}
	return &Service{db: db, verifier: verifier, notifier: notifier, log: log, ttl: ttl}
}

// LoginWithEmail authenticates a password identity and issues a session.
func (s *Service) LoginWithEmail(email, password, ip, ua string) (string, *models.UserModel, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", nil, errInvalidEmail
	}

	var u models.UserModel
	if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errUserNotFound
		}
		return "", nil, err
	}
	if u.Disabled {
		return "", nil, errAccountDisabled
	}
	if u.Password == "" {
		// Federated identity with no password set.
		return "", nil, errWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, errWrongPassword
	}

	return s.openSession(&u, models.ProviderPassword, ip, ua)
}

// Register creates a password identity. The profile document is written
// best-effort: a failure is logged and the registration still succeeds, the
// same trade-off the old client made.
func (s *Service) Register(dto *RegisterDTO, ip, ua string) (string, *models.UserModel, error) {
	email := normalizeEmail(dto.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", nil, errInvalidEmail
	}
	fullName := strings.TrimSpace(dto.FullName)

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	u := models.UserModel{
		Email:    email,
		Name:     fullName,
		Password: string(hash),
		Role:     models.RoleUser,
		Provider: models.ProviderPassword,
	}
	if err := s.db.Create(&u).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return "", nil, errAlreadyRegistered
		}
		return "", nil, err
	}

	s.writeProfile(&u, fullName)

	return s.openSession(&u, models.ProviderPassword, ip, ua)
}

// LoginWithGoogle verifies a Google ID token, finds or creates the matching
// identity, and issues a session.
func (s *Service) LoginWithGoogle(idToken, ip, ua string) (string, *models.UserModel, error) {
	if s.verifier == nil {
		return "", nil, errInvalidGoogleToken
	}
	identity, err := s.verifier.Verify(idToken)
	if err != nil {
		return "", nil, errInvalidGoogleToken
	}
	email := normalizeEmail(identity.Email)
	if email == "" {
		return "", nil, errInvalidGoogleToken
	}

	var u models.UserModel
	err = s.db.Where("email = ?", email).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = models.UserModel{
			Email:    email,
			Name:     strings.TrimSpace(identity.Name),
			Role:     models.RoleUser,
			Provider: models.ProviderGoogle,
		}
		if err := s.db.Create(&u).Error; err != nil {
			if !database.IsDuplicateEntry(err) {
				return "", nil, err
			}
			// Lost a race with a concurrent first sign-in.
			if err := s.db.Where("email = ?", email).First(&u).Error; err != nil {
				return "", nil, err
			}
		} else {
			s.writeProfile(&u, u.Name)
		}
	case err != nil:
		return "", nil, err
	}

	if u.Disabled {
		return "", nil, errAccountDisabled
	}

	// Backfill a missing profile for identities registered before profiles
	// existed or whose best-effort write failed.
	var count int64
	s.db.Model(&models.ProfileModel{}).Where("user_id = ?", u.ID).Count(&count)
	if count == 0 {
		s.writeProfile(&u, u.Name)
	}

	return s.openSession(&u, models.ProviderGoogle, ip, ua)
}

// Logout revokes the session and resets the one-time first-login flag so the
// next sign-in redirects again.
func (s *Service) Logout(userID, sessionID string) error {
	if err := sessionpkg.Revoke(s.db, userID, sessionID); err != nil {
		return err
	}
	if err := s.db.Model(&models.UserModel{}).
		Where("id = ?", userID).
		Update("first_login_done", false).Error; err != nil {
		s.log.Warn("failed to reset first-login flag", zap.String("userId", userID), zap.Error(err))
	}
	if s.notifier != nil {
		s.notifier.Publish(authstate.Event{Kind: authstate.SignedOut, UserID: userID})
	}
	return nil
}

// GetByID loads a user, or nil when it does not exist.
func (s *Service) GetByID(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// MarkFirstLoginDone flips the one-time flag after the client consumed the
// redirect. Returns whether this login was the first.
func (s *Service) MarkFirstLoginDone(userID string) (bool, error) {
	res := s.db.Model(&models.UserModel{}).
		Where("id = ? AND first_login_done = ?", userID, false).
		Update("first_login_done", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Service) openSession(u *models.UserModel, provider, ip, ua string) (string, *models.UserModel, error) {
	now := time.Now()
	s.db.Model(u).Updates(map[string]any{
		"last_login_time": now,
		"last_login_ip":   ip,
	})
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, _, err := sessionpkg.Issue(s.db, u, ip, ua, s.ttl)
	if err != nil {
		return "", nil, err
	}
	if s.notifier != nil {
		s.notifier.Publish(authstate.Event{
			Kind:     authstate.SignedIn,
			UserID:   u.ID,
			Email:    u.Email,
			Role:     u.Role,
			Provider: provider,
		})
	}
	return token, u, nil
}

func (s *Service) writeProfile(u *models.UserModel, fullName string) {
	profile := models.ProfileModel{
		UserID:   u.ID,
		FullName: fullName,
		Initials: initialsOf(fullName),
		Email:    u.Email,
		Role:     u.Role,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		s.log.Warn("failed to write profile document",
			zap.String("userId", u.ID), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initialsOf builds up to two uppercase initials from a full name.
func initialsOf(fullName string) string {
	var initials []rune
	for _, f := range strings.Fields(fullName) {
		r := []rune(f)[0]
		initials = append(initials, []rune(strings.ToUpper(string(r)))...)
		if len(initials) >= 2 {
			break
		}
	}
	return string(initials)
}
