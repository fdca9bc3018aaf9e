package identity

import (
	"net/http/httptest"
	"testing"
)

func TestHeaderProvider_Anonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, err := HeaderProvider{}.FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}
}

func TestHeaderProvider_ParsesGroups(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Auth-User", "alice")
	req.Header.Set("X-Auth-Email", "alice@example.org")
	req.Header.Set("X-Auth-Groups", "artboard, election-admins ,,  ")

	user, err := HeaderProvider{}.FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest error: %v", err)
	}
	if user.ID != "alice" || user.Email != "alice@example.org" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(user.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", user.Groups)
	}
	if !user.InGroup("artboard") || !user.InGroup("election-admins") {
		t.Fatalf("group membership lost: %v", user.Groups)
	}
}

func TestInGroup_NilSafe(t *testing.T) {
	var user *User
	if user.InGroup("anything") {
		t.Fatal("nil user must not belong to any group")
	}
	if (&User{Groups: []string{"a"}}).InGroup("") {
		t.Fatal("empty group name must not match")
	}
}
