package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testVars() map[string]string {
	return map[string]string{
		"subject":          "Trip starts soon",
		"body":             "Get your gear ready.",
		"participant_name": "Olivia",
		"trip_title":       "Keys Tarpon",
		"trip_dates":       "June 17, 2026",
		"days":             "7",
	}
}

func TestSendTemplateSuccess(t *testing.T) {
	var captured resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("request = %s %s, want POST /emails", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer re_test_key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(resendResponse{ID: "msg_42"})
	}))
	defer srv.Close()

	c := NewClient("re_test_key", "TripScout", "nudge@tripscout.app", "support@tripscout.app")
	c.BaseURL = srv.URL

	res := c.SendTemplate(context.Background(), "nudge_countdown", "o@x.com", testVars())

	if !res.Success || res.MessageID != "msg_42" {
		t.Fatalf("result = %+v, want success with msg_42", res)
	}
	if captured.Subject != "Trip starts soon" {
		t.Errorf("subject = %q", captured.Subject)
	}
	if len(captured.To) != 1 || captured.To[0] != "o@x.com" {
		t.Errorf("to = %v", captured.To)
	}
	if captured.From != "TripScout <nudge@tripscout.app>" {
		t.Errorf("from = %q", captured.From)
	}
	if len(captured.ReplyTo) != 1 || captured.ReplyTo[0] != "support@tripscout.app" {
		t.Errorf("reply_to = %v", captured.ReplyTo)
	}
	if !strings.Contains(captured.HTML, "Hi Olivia,") || !strings.Contains(captured.HTML, "Keys Tarpon") {
		t.Errorf("html missing interpolated vars: %s", captured.HTML)
	}
}

func TestSendTemplateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid to address"}`))
	}))
	defer srv.Close()

	c := NewClient("re_test_key", "TripScout", "nudge@tripscout.app", "")
	c.BaseURL = srv.URL

	res := c.SendTemplate(context.Background(), "nudge_event", "bad", testVars())

	if res.Success {
		t.Fatal("result success despite 422")
	}
	if !strings.Contains(res.Error, "resend 422") || !strings.Contains(res.Error, "invalid to address") {
		t.Errorf("error = %q, want status and body", res.Error)
	}
}

func TestSendTemplateUnknownTemplate(t *testing.T) {
	c := NewClient("re_test_key", "TripScout", "nudge@tripscout.app", "")
	res := c.SendTemplate(context.Background(), "nope", "o@x.com", nil)
	if res.Success || !strings.Contains(res.Error, "not found") {
		t.Fatalf("result = %+v, want template-not-found error", res)
	}
}

func TestSendTemplateWithoutAPIKey(t *testing.T) {
	c := NewClient("", "TripScout", "nudge@tripscout.app", "")
	res := c.SendTemplate(context.Background(), "nudge_event", "o@x.com", testVars())
	if res.Success || res.Error != "email not configured" {
		t.Fatalf("result = %+v, want not-configured error without network call", res)
	}
}

func TestInterpolateLeavesUnknownPlaceholders(t *testing.T) {
	got := interpolate("Hi {{participant_name}}, {{mystery}}", map[string]string{"participant_name": "Olivia"})
	want := "Hi Olivia, {{mystery}}"
	if got != want {
		t.Fatalf("interpolate = %q, want %q", got, want)
	}
}
