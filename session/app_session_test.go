package session

import "testing"

func TestSessionKeys(t *testing.T) {
	if got := key("abc"); got != "club:sess:abc" {
		t.Fatalf("key = %q", got)
	}
	if got := userSetKey("u1"); got != "club:user_sessions:u1" {
		t.Fatalf("userSetKey = %q", got)
	}
}

func TestWebauthnKeys(t *testing.T) {
	if got := waKey("reg", "alice"); got != "club:webauthn:reg:alice" {
		t.Fatalf("waKey = %q", got)
	}
	// kind 参与 key，注册态和登录态不会互相覆盖
	if waKey("reg", "x") == waKey("auth", "x") {
		t.Fatal("reg and auth keys must differ")
	}
}
