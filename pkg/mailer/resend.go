package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Result is the outcome of one send attempt. SendTemplate never returns a Go
// error; callers branch on Success.
type Result struct {
	Success   bool
	MessageID string
	Error     string
}

// Client sends transactional email through the Resend API.
type Client struct {
	BaseURL  string
	APIKey   string
	FromName string
	FromAddr string
	ReplyTo  string
	client   *http.Client
}

func NewClient(apiKey, fromName, fromAddr, replyTo string) *Client {
	return &Client{
		BaseURL:  "https://api.resend.com",
		APIKey:   apiKey,
		FromName: fromName,
		FromAddr: fromAddr,
		ReplyTo:  replyTo,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type emailTemplate struct {
	Subject  string
	BodyHTML string
}

// Templates for the nudge channels. Subject/body are interpolated with
// {{var}} placeholders from the candidate's context bag.
var templates = map[string]emailTemplate{
	"nudge_deadline": {
		Subject:  "{{subject}}",
		BodyHTML: `<p>Hi {{participant_name}},</p><p>{{body}}</p><p><strong>{{task_title}}</strong> is due in {{days}} day(s) for <strong>{{trip_title}}</strong> ({{trip_dates}}).</p>`,
	},
	"nudge_countdown": {
		Subject:  "{{subject}}",
		BodyHTML: `<p>Hi {{participant_name}},</p><p>{{body}}</p><p><strong>{{trip_title}}</strong> starts in {{days}} day(s): {{trip_dates}}.</p>`,
	},
	"nudge_overdue": {
		Subject:  "{{subject}}",
		BodyHTML: `<p>Hi {{participant_name}},</p><p>{{body}}</p><p><strong>{{task_title}}</strong> for <strong>{{trip_title}}</strong> is {{days}} day(s) overdue.</p>`,
	},
	"nudge_event": {
		Subject:  "{{subject}}",
		BodyHTML: `<p>Hi {{participant_name}},</p><p>{{body}}</p>`,
	},
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo []string `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// SendTemplate renders the named template with vars and delivers it.
func (c *Client) SendTemplate(ctx context.Context, templateKey, to string, vars map[string]string) Result {
	tpl, ok := templates[templateKey]
	if !ok {
		return Result{Error: fmt.Sprintf("template '%s' not found", templateKey)}
	}
	if c.APIKey == "" {
		log.Printf("[Email] RESEND_API_KEY not configured, skipping send")
		return Result{Error: "email not configured"}
	}

	subject := interpolate(tpl.Subject, vars)
	html := renderLayout(interpolate(tpl.BodyHTML, vars))
	from := fmt.Sprintf("%s <%s>", c.FromName, c.FromAddr)

	payload := resendRequest{From: from, To: []string{to}, Subject: subject, HTML: html}
	if c.ReplyTo != "" {
		payload.ReplyTo = []string{c.ReplyTo}
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return Result{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("[Email] Resend %d: %s", resp.StatusCode, errBody)
		return Result{Error: fmt.Sprintf("resend %d: %s", resp.StatusCode, errBody)}
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true, MessageID: out.ID}
}

// interpolate replaces {{key}} placeholders with values from vars. Unknown
// placeholders are left in place.
func interpolate(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

func renderLayout(bodyHTML string) string {
	return `<!DOCTYPE html><html><body style="font-family:Helvetica,Arial,sans-serif;color:#1a2b3c;margin:0;padding:0;background:#f4f6f8;">` +
		`<div style="max-width:560px;margin:24px auto;background:#ffffff;border-radius:8px;padding:32px;">` +
		bodyHTML +
		`<hr style="border:none;border-top:1px solid #e2e8f0;margin:24px 0;">` +
		`<p style="font-size:12px;color:#8795a1;">Sent by TripScout, your trip planning assistant.</p>` +
		`</div></body></html>`
}
