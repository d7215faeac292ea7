package llm

import (
	"context"
	"fmt"
	"strings"

	"tripscout/internal/nudge"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
)

// systemPrompt instructs the model to answer with a strict JSON object so the
// response can be parsed without free-text heuristics.
const systemPrompt = `You write short, friendly reminder messages for a fishing trip planning app.
Given the trigger context below, respond with a JSON object: {"subject": "...", "body": "..."}.
Keep the subject under 80 characters and the body under 3 sentences. Mention the trip title,
and the task or day count when present. Warm but not pushy. No markdown, no emojis in the subject.`

const (
	maxSubjectLen = 300
	maxBodyLen    = 1000
)

// Generator produces nudge copy via OpenAI chat completions. Implements
// nudge.Generator.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator returns nil when no API key is configured; the engine then
// runs on canned fallback copy alone.
func NewGenerator(apiKey, model string) *Generator {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (g *Generator) Generate(ctx context.Context, in nudge.MessageInput) (nudge.Message, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(200),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage(in)),
		},
	})
	if err != nil {
		return nudge.Message{}, err
	}
	if len(resp.Choices) == 0 {
		return nudge.Message{}, fmt.Errorf("empty completion")
	}
	return parseResponse(resp.Choices[0].Message.Content)
}

// userMessage flattens the trigger context into key: value lines, one field
// per line, empty values included so the prompt shape is stable.
func userMessage(in nudge.MessageInput) string {
	days := ""
	if in.HasDays {
		days = fmt.Sprintf("%d", in.Days)
	}
	pairs := []struct{ k, v string }{
		{"trigger_type", in.TriggerType},
		{"automation_mode", in.AutomationMode},
		{"trip_title", in.TripTitle},
		{"trip_region", in.TripRegion},
		{"trip_dates", in.TripDates},
		{"target_species", in.TargetSpecies},
		{"task_title", in.TaskTitle},
		{"task_type", in.TaskType},
		{"days", days},
		{"participant_name", in.ParticipantName},
		{"event_text", in.EventText},
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, p.k+": "+p.v)
	}
	return strings.Join(lines, "\n")
}

// parseResponse pulls subject/body out of the model output, tolerating
// markdown code fences around the JSON.
func parseResponse(raw string) (nudge.Message, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if !gjson.Valid(cleaned) {
		return nudge.Message{}, fmt.Errorf("completion is not valid JSON")
	}
	subject := gjson.Get(cleaned, "subject").String()
	body := gjson.Get(cleaned, "body").String()
	if subject == "" || body == "" {
		return nudge.Message{}, fmt.Errorf("completion missing subject or body")
	}
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}
	return nudge.Message{Subject: subject, Body: body}, nil
}
