package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kautilyalaw/core/internal/models"
	"github.com/kautilyalaw/core/internal/pkg/authstate"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeVerifier struct {
	identity *GoogleIdentity
	err      error
}

func (f *fakeVerifier) Verify(string) (*GoogleIdentity, error) {
	return f.identity, f.err
}

type recordingNotifier struct {
	events []authstate.Event
}

func (r *recordingNotifier) Publish(ev authstate.Event) {
	r.events = append(r.events, ev)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.UserModel{}, &models.ProfileModel{}, &models.UserSession{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) *models.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.UserModel{
		Email:    email,
		Name:     "Seed User",
		Password: string(hash),
		Role:     models.RoleUser,
		Provider: models.ProviderPassword,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLoginWithEmail(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewService(db, nil, notifier, nil, time.Hour)
	seedUser(t, db, "student@example.com", "secret123")

	token, u, err := svc.LoginWithEmail("Student@Example.com", "secret123", "1.2.3.4", "test-agent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || u == nil {
		t.Fatal("missing token or user")
	}
	if u.LastLoginIP != "1.2.3.4" || u.LastLoginTime == nil {
		t.Fatalf("login metadata not stamped: %+v", u)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("events = %d, want 1", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.Kind != authstate.SignedIn || ev.Email != "student@example.com" || ev.Provider != models.ProviderPassword {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestLoginWithEmailErrors(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, nil, time.Hour)
	u := seedUser(t, db, "known@example.com", "secret123")

	if _, _, err := svc.LoginWithEmail("not-an-email", "x", "", ""); !errors.Is(err, errInvalidEmail) {
		t.Fatalf("malformed email: %v", err)
	}
	if _, _, err := svc.LoginWithEmail("missing@example.com", "x", "", ""); !errors.Is(err, errUserNotFound) {
		t.Fatalf("unknown account: %v", err)
	}
	if _, _, err := svc.LoginWithEmail("known@example.com", "wrong", "", ""); !errors.Is(err, errWrongPassword) {
		t.Fatalf("bad password: %v", err)
	}

	db.Model(u).Update("disabled", true)
	if _, _, err := svc.LoginWithEmail("known@example.com", "secret123", "", ""); !errors.Is(err, errAccountDisabled) {
		t.Fatalf("disabled account: %v", err)
	}
}

func TestRegisterWritesProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, nil, time.Hour)

	token, u, err := svc.Register(&RegisterDTO{
		FullName: "Asha Verma",
		Email:    "asha@example.com",
		Password: "secret123",
	}, "", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("no session issued")
	}

	var profile models.ProfileModel
	if err := db.First(&profile, "user_id = ?", u.ID).Error; err != nil {
		t.Fatalf("profile not written: %v", err)
	}
	if profile.FullName != "Asha Verma" || profile.Initials != "AV" || profile.Email != "asha@example.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, nil, time.Hour)
	seedUser(t, db, "dup@example.com", "secret123")

	_, _, err := svc.Register(&RegisterDTO{
		FullName: "Dup",
		Email:    "dup@example.com",
		Password: "secret123",
	}, "", "")
	if !errors.Is(err, errAlreadyRegistered) {
		t.Fatalf("duplicate email: %v", err)
	}
}

func TestRegisterSurvivesProfileFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, nil, time.Hour)

	// Force the profile insert to fail: drop the table.
	if err := db.Migrator().DropTable(&models.ProfileModel{}); err != nil {
		t.Fatalf("drop: %v", err)
	}

	token, u, err := svc.Register(&RegisterDTO{
		FullName: "Best Effort",
		Email:    "be@example.com",
		Password: "secret123",
	}, "", "")
	if err != nil {
		t.Fatalf("registration must survive a failed profile write: %v", err)
	}
	if token == "" || u == nil {
		t.Fatal("session not issued")
	}
}

func TestLoginWithGoogleCreatesUserAndProfile(t *testing.T) {
	db := newTestDB(t)
	verifier := &fakeVerifier{identity: &GoogleIdentity{
		Subject: "g-123",
		Email:   "Google.User@Example.com",
		Name:    "Google User",
	}}
	notifier := &recordingNotifier{}
	svc := NewService(db, verifier, notifier, nil, time.Hour)

	token, u, err := svc.LoginWithGoogle("fake-token", "", "")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if token == "" {
		t.Fatal("no session issued")
	}
	if u.Email != "google.user@example.com" || u.Provider != models.ProviderGoogle {
		t.Fatalf("unexpected user: %+v", u)
	}

	var profile models.ProfileModel
	if err := db.First(&profile, "user_id = ?", u.ID).Error; err != nil {
		t.Fatalf("profile not written: %v", err)
	}

	// Second sign-in reuses the identity.
	_, u2, err := svc.LoginWithGoogle("fake-token", "", "")
	if err != nil {
		t.Fatalf("second google login: %v", err)
	}
	if u2.ID != u.ID {
		t.Fatal("second login created a new user")
	}
	var count int64
	db.Model(&models.UserModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("users = %d, want 1", count)
	}
}

func TestLoginWithGoogleInvalidToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, &fakeVerifier{err: errors.New("bad signature")}, nil, nil, time.Hour)

	if _, _, err := svc.LoginWithGoogle("garbage", "", ""); !errors.Is(err, errInvalidGoogleToken) {
		t.Fatalf("invalid token: %v", err)
	}
}

func TestLogoutRevokesSessionAndResetsFirstLogin(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewService(db, nil, notifier, nil, time.Hour)
	seedUser(t, db, "out@example.com", "secret123")

	token, u, err := svc.LoginWithEmail("out@example.com", "secret123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	_ = token

	if first, err := svc.MarkFirstLoginDone(u.ID); err != nil || !first {
		t.Fatalf("first login flag: first=%v err=%v", first, err)
	}
	// The flag is one-shot until logout.
	if first, _ := svc.MarkFirstLoginDone(u.ID); first {
		t.Fatal("flag reported first login twice")
	}

	var sess models.UserSession
	if err := db.First(&sess, "user_id = ?", u.ID).Error; err != nil {
		t.Fatalf("session row: %v", err)
	}
	if err := svc.Logout(u.ID, sess.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	db.First(&sess, "id = ?", sess.ID)
	if sess.RevokedAt == nil {
		t.Fatal("session not revoked")
	}

	var fresh models.UserModel
	db.First(&fresh, "id = ?", u.ID)
	if fresh.FirstLoginDone {
		t.Fatal("first-login flag not reset on logout")
	}

	last := notifier.events[len(notifier.events)-1]
	if last.Kind != authstate.SignedOut || last.UserID != u.ID {
		t.Fatalf("unexpected sign-out event: %+v", last)
	}
}

func TestInitialsOf(t *testing.T) {
	cases := map[string]string{
		"Asha Verma":      "AV",
		"singleword":      "S",
		"  three word ok": "TW",
		"":                "",
	}
	for in, want := range cases {
		if got := initialsOf(in); got != want {
			t.Errorf("initialsOf(%q) = %q, want %q", in, got, want)
		}
	}
}
