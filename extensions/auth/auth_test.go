package auth

import (
	"encoding/base64"
	"testing"

	"github.com/relaykit/smtpsubmit"
	"github.com/relaykit/smtpsubmit/sasl"
)

func TestAuthPrefersPlainOverLogin(t *testing.T) {
	ext := New(sasl.Credentials{AuthenticationID: "alex", Password: "hunter2"})
	ext.Configure("LOGIN PLAIN")

	if !ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{}) {
		t.Fatal("expected AUTH to demand a stage when a mechanism is supported")
	}

	var sent []string
	ext.GoAhead(func(l string) { sent = append(sent, l) }, func(bool) {})

	if len(sent) != 1 || sent[0][:len("AUTH PLAIN ")] != "AUTH PLAIN " {
		t.Fatalf("expected an AUTH PLAIN command with an initial response, got %q", sent)
	}
}

func TestAuthFallsBackToLogin(t *testing.T) {
	ext := New(sasl.Credentials{AuthenticationID: "alex", Password: "hunter2"})
	ext.Configure("LOGIN")

	if !ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{}) {
		t.Fatal("expected AUTH to demand a stage")
	}

	var sent []string
	ext.GoAhead(func(l string) { sent = append(sent, l) }, func(bool) {})
	if len(sent) != 1 || sent[0] != "AUTH LOGIN" {
		t.Fatalf("LOGIN has no initial response, got %q", sent)
	}
}

func TestAuthSkipsWhenNoSharedMechanism(t *testing.T) {
	ext := New(sasl.Credentials{AuthenticationID: "alex", Password: "hunter2"})
	ext.Configure("CRAM-MD5")

	if ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{}) {
		t.Fatal("expected no stage when no supported mechanism is shared")
	}
}

func TestAuthOnlyAttemptsOnce(t *testing.T) {
	ext := New(sasl.Credentials{AuthenticationID: "alex", Password: "hunter2"})
	ext.Configure("PLAIN")

	if !ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{}) {
		t.Fatal("expected first call to demand a stage")
	}
	ext.GoAhead(func(string) {}, func(bool) {})
	if ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{}) {
		t.Fatal("expected AUTH not to be re-attempted after GoAhead")
	}
}

func TestAuthLoginChallengeResponseLoop(t *testing.T) {
	ext := New(sasl.Credentials{AuthenticationID: "alex", Password: "hunter2"})
	ext.Configure("LOGIN")
	ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{})

	var sent []string
	var completed *bool
	ext.GoAhead(func(l string) { sent = append(sent, l) }, func(ok bool) { completed = &ok })

	usernameChallenge := base64.StdEncoding.EncodeToString([]byte("Username:"))
	if !ext.HandleServerMessage(&smtpsubmit.MessageContext{}, smtpsubmit.Reply{Code: 334, Text: usernameChallenge}) {
		t.Fatal("334 must not be treated as a hard failure")
	}
	if len(sent) != 2 || sent[0] != "AUTH LOGIN" {
		t.Fatalf("expected AUTH LOGIN then a username response, got %v", sent)
	}
	if decoded, _ := base64.StdEncoding.DecodeString(sent[1]); string(decoded) != "alex" {
		t.Fatalf("got %q", decoded)
	}

	passwordChallenge := base64.StdEncoding.EncodeToString([]byte("Password:"))
	ext.HandleServerMessage(&smtpsubmit.MessageContext{}, smtpsubmit.Reply{Code: 334, Text: passwordChallenge})
	if len(sent) != 3 {
		t.Fatalf("expected a password response, got %v", sent)
	}

	ext.HandleServerMessage(&smtpsubmit.MessageContext{}, smtpsubmit.Reply{Code: 235, Text: "Authenticated"})
	if completed == nil || !*completed {
		t.Fatal("expected stageComplete(true) on 235")
	}
}

func TestAuthDeclinedIsSoftNotHard(t *testing.T) {
	ext := New(sasl.Credentials{AuthenticationID: "alex", Password: "hunter2"})
	ext.Configure("PLAIN")
	ext.IsExtraProtocolStageNeededHere(&smtpsubmit.MessageContext{})

	var completed *bool
	ext.GoAhead(func(string) {}, func(ok bool) { completed = &ok })

	hardFailure := !ext.HandleServerMessage(&smtpsubmit.MessageContext{}, smtpsubmit.Reply{Code: 535, Text: "Authentication failed"})
	if hardFailure {
		t.Fatal("a declined AUTH must not be reported as a hard failure")
	}
	if completed == nil || *completed {
		t.Fatal("expected stageComplete(false) on a declined AUTH")
	}
}
