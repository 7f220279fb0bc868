package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"post-radar/domain/model"
	"post-radar/domain/repository"

	"google.golang.org/genai"
)

// ErrNotConfigured means the member has no AI provider or API key stored.
// It is raised before any network call is made.
var ErrNotConfigured = errors.New("translator: AI provider not configured")

// Translator resolves the member's AI settings per request and dispatches to
// the configured SDK kind: an OpenAI-compatible chat completions endpoint or
// the Gemini SDK.
type Translator struct {
	settingsRepo repository.ISettings
	httpClient   *http.Client
}

func NewTranslator(settingsRepo repository.ISettings) *Translator {
	return &Translator{
		settingsRepo: settingsRepo,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

var _ repository.ITranslator = (*Translator)(nil)

func (t *Translator) Translate(ctx context.Context, memberID, text string, quotedText *string) (*repository.TranslationResult, error) {
	settings, err := t.settingsRepo.GetByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.AIProvider == "" || settings.AIAPIKey == "" {
		return nil, ErrNotConfigured
	}

	prompt := buildPrompt(text, quotedText, settings.TargetLang)

	var raw string
	switch settings.AISDK {
	case model.TranslatorSDKGemini:
		raw, err = t.completeGemini(ctx, settings, prompt)
	default:
		raw, err = t.completeOpenAI(ctx, settings, prompt)
	}
	if err != nil {
		return nil, err
	}
	return ParseResponse(raw), nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// completeOpenAI calls any OpenAI-compatible chat completions endpoint; a
// custom endpoint from settings overrides the provider default.
func (t *Translator) completeOpenAI(ctx context.Context, settings *model.MemberSettings, prompt string) (string, error) {
	endpoint := settings.AIEndpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}
	endpoint = strings.TrimSuffix(endpoint, "/") + "/chat/completions"

	mdl := settings.AIModel
	if mdl == "" {
		mdl = "gpt-4o-mini"
	}
	body, err := json.Marshal(chatRequest{
		Model:    mdl,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+settings.AIAPIKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("translator: decode completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("translator: completion failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("translator: completion failed with status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("translator: completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (t *Translator) completeGemini(ctx context.Context, settings *model.MemberSettings, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.AIAPIKey})
	if err != nil {
		return "", err
	}
	mdl := settings.AIModel
	if mdl == "" {
		mdl = "gemini-2.5-flash"
	}
	result, err := client.Models.GenerateContent(ctx, mdl, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("translator: empty completion")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
