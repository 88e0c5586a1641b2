package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/session"
	"inkwell/internal/store"
)

func testAuth(t *testing.T) (*Auth, *store.UserStore) {
	t.Helper()

	db := testDB(t)
	client := testValkeyClient(t)
	users := store.NewUserStore(db)
	sessions := session.NewStore(client, false)

	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE email LIKE 'authflow-%'")
	})

	return NewAuth(sessions, users), users
}

func TestRegisterLoginFlow(t *testing.T) {
	auth, _ := testAuth(t)
	email := "authflow-" + suffix() + "@example.com"

	// Register.
	rr := httptest.NewRecorder()
	auth.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Flow Tester",
		"email":    email,
		"password": "secret123",
	}, nil, nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("register status: got %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeEnvelope(t, rr)
	if body["success"] != true {
		t.Error("register: success should be true")
	}
	data := body["data"].(map[string]any)
	if data["role"] != "author" {
		t.Errorf("new accounts should be authors, got %v", data["role"])
	}
	if _, leaked := data["password_hash"]; leaked {
		t.Error("password hash leaked in response")
	}

	// Registration opens a session.
	if len(rr.Result().Cookies()) == 0 {
		t.Error("register should set a session cookie")
	}

	// Login with the right password.
	rr = httptest.NewRecorder()
	auth.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "secret123",
	}, nil, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("login status: got %d, body %s", rr.Code, rr.Body.String())
	}

	// Login with the wrong password.
	rr = httptest.NewRecorder()
	auth.Login(rr, jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "wrongpass",
	}, nil, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad login status: got %d, want 401", rr.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, users := testAuth(t)
	email := "authflow-" + suffix() + "@example.com"

	if _, err := users.Create(email, "secret123", "Original", "author"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rr := httptest.NewRecorder()
	auth.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Copycat",
		"email":    email,
		"password": "secret123",
	}, nil, nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: got %d, want 400", rr.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := testAuth(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@b.c", "password": "secret123"}},
		{"bad email", map[string]string{"name": "X", "email": "not-an-email", "password": "secret123"}},
		{"short password", map[string]string{"name": "X", "email": "a@b.c", "password": "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			auth.Register(rr, jsonRequest(t, http.MethodPost, "/api/auth/register", tc.body, nil, nil))
			if rr.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rr.Code)
			}
		})
	}
}

func TestMe(t *testing.T) {
	auth, _ := testAuth(t)
	db := testDB(t)
	user := createUser(t, db, "author")

	rr := httptest.NewRecorder()
	auth.Me(rr, jsonRequest(t, http.MethodGet, "/api/auth/me", nil, principalOf(user), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("me status: got %d", rr.Code)
	}
	body := decodeEnvelope(t, rr)
	data := body["data"].(map[string]any)
	if data["id"] != user.ID || data["email"] != user.Email {
		t.Errorf("me: got %v", data)
	}
}

func TestUpdateDetailsRefreshesProfile(t *testing.T) {
	auth, users := testAuth(t)
	db := testDB(t)
	user := createUser(t, db, "author")

	bio := "Writes Go."
	rr := httptest.NewRecorder()
	auth.UpdateDetails(rr, jsonRequest(t, http.MethodPut, "/api/auth/updatedetails", map[string]any{
		"name": "New Name",
		"bio":  bio,
	}, principalOf(user), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("updatedetails status: got %d, body %s", rr.Code, rr.Body.String())
	}

	fresh, err := users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if fresh.Name != "New Name" || fresh.Bio == nil || *fresh.Bio != bio {
		t.Errorf("profile not updated: %+v", fresh)
	}
}

func TestUpdatePassword(t *testing.T) {
	auth, users := testAuth(t)
	db := testDB(t)
	user := createUser(t, db, "author")

	// Wrong current password is rejected.
	rr := httptest.NewRecorder()
	auth.UpdatePassword(rr, jsonRequest(t, http.MethodPut, "/api/auth/updatepassword", map[string]string{
		"currentPassword": "nope",
		"newPassword":     "newsecret99",
	}, principalOf(user), nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password: got %d, want 401", rr.Code)
	}

	// Correct current password changes it.
	rr = httptest.NewRecorder()
	auth.UpdatePassword(rr, jsonRequest(t, http.MethodPut, "/api/auth/updatepassword", map[string]string{
		"currentPassword": "secret123",
		"newPassword":     "newsecret99",
	}, principalOf(user), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("updatepassword status: got %d", rr.Code)
	}

	fresh, _ := users.FindByID(user.ID)
	if !users.CheckPassword(fresh, "newsecret99") {
		t.Error("new password rejected after update")
	}
}

func TestTwoFASetupStoresSecret(t *testing.T) {
	auth, users := testAuth(t)
	db := testDB(t)
	user := createUser(t, db, "author")

	rr := httptest.NewRecorder()
	auth.TwoFASetup(rr, jsonRequest(t, http.MethodPost, "/api/auth/2fa/setup", nil, principalOf(user), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("2fa setup status: got %d, body %s", rr.Code, rr.Body.String())
	}
	body := decodeEnvelope(t, rr)
	data := body["data"].(map[string]any)
	if data["secret"] == "" {
		t.Error("expected a TOTP secret")
	}
	qr, _ := data["qr"].(string)
	if len(qr) == 0 || qr[:22] != "data:image/png;base64," {
		t.Errorf("qr: got %.40s", qr)
	}

	fresh, _ := users.FindByID(user.ID)
	if fresh.TOTPSecret == nil || *fresh.TOTPSecret != data["secret"] {
		t.Error("secret not persisted")
	}
	if fresh.TOTPEnabled {
		t.Error("2FA must stay off until enable confirms a code")
	}
}

func TestTwoFAEnableRejectsBadCode(t *testing.T) {
	auth, _ := testAuth(t)
	db := testDB(t)
	user := createUser(t, db, "author")

	// Without setup.
	rr := httptest.NewRecorder()
	auth.TwoFAEnable(rr, jsonRequest(t, http.MethodPost, "/api/auth/2fa/enable", map[string]string{
		"token": "123456",
	}, principalOf(user), nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("enable without setup: got %d, want 400", rr.Code)
	}

	// After setup, a wrong code is still rejected.
	setupRR := httptest.NewRecorder()
	auth.TwoFASetup(setupRR, jsonRequest(t, http.MethodPost, "/api/auth/2fa/setup", nil, principalOf(user), nil))
	if setupRR.Code != http.StatusOK {
		t.Fatalf("setup status: got %d", setupRR.Code)
	}

	rr = httptest.NewRecorder()
	auth.TwoFAEnable(rr, jsonRequest(t, http.MethodPost, "/api/auth/2fa/enable", map[string]string{
		"token": "000000",
	}, principalOf(user), nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("enable with bad code: got %d, want 400", rr.Code)
	}
}

func TestLogout(t *testing.T) {
	auth, _ := testAuth(t)

	rr := httptest.NewRecorder()
	auth.Logout(rr, jsonRequest(t, http.MethodPost, "/api/auth/logout", nil, nil, nil))

	if rr.Code != http.StatusOK {
		t.Errorf("logout status: got %d", rr.Code)
	}
	body := decodeEnvelope(t, rr)
	if body["success"] != true {
		t.Error("logout should succeed even without a session")
	}
}
