// internal/chat/session.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/text/language"
)

// Sentinel is stored in place of a genuine result when a request fails.
// Batch operations key off it to keep going instead of aborting.
const Sentinel = "error"

// NotInitialized is returned when there is no usable session at all.
const NotInitialized = "session not initialized"

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

type geminiRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// Config carries everything a session needs to reach the model.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	VisionModel string
	Timeout     time.Duration
}

// Session is one language-bound conversation handle. Swapping language means
// building a new Session; entries analyzed under the old one keep their text.
type Session struct {
	lang      language.Tag
	templates *Templates
	cfg       Config
	client    *http.Client
}

func NewSession(cfg Config, templates *Templates, lang string) (*Session, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", lang, err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.0-flash"
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.TextModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Session{
		lang:      tag,
		templates: templates,
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Language returns the session's language tag.
func (s *Session) Language() string {
	return s.lang.String()
}

// SendText sends one text completion request. It returns the generated text,
// or the sentinel on failure; it never returns a Go error past this boundary.
func (s *Session) SendText(ctx context.Context, text, templateKey string) string {
	if s == nil || s.cfg.APIKey == "" {
		return NotInitialized
	}

	req := geminiRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: s.templates.Get(templateKey) + s.languageHint()}}},
			{Role: "model", Parts: []part{{Text: "Sure, I understood the instructions and will follow it accurately."}}},
			{Role: "user", Parts: []part{{Text: text}}},
		},
	}

	out, err := s.generate(ctx, s.cfg.TextModel, req)
	if err != nil {
		log.Printf("chat: text request failed: %v", err)
		return Sentinel
	}
	return out
}

// SendImage sends one image-grounded request. localTime gives the model the
// capture time as context. Same sentinel contract as SendText.
func (s *Session) SendImage(ctx context.Context, imageBase64, localTime, templateKey string) string {
	if s == nil || s.cfg.APIKey == "" {
		return NotInitialized
	}

	prompt := s.templates.Get(templateKey) + s.languageHint()
	if localTime != "" {
		prompt += "\n\nThe photo was taken at: " + localTime
	}

	req := geminiRequest{
		Contents: []content{
			{Role: "user", Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: "image/png", Data: imageBase64}},
			}},
		},
	}

	out, err := s.generate(ctx, s.cfg.VisionModel, req)
	if err != nil {
		log.Printf("chat: vision request failed: %v", err)
		return Sentinel
	}
	return out
}

func (s *Session) languageHint() string {
	if s.lang == language.English || s.lang == language.AmericanEnglish {
		return ""
	}
	return "\n\nAnswer in the language with BCP 47 tag: " + s.lang.String() + "."
}

func (s *Session) generate(ctx context.Context, model string, reqBody geminiRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", s.cfg.BaseURL, model, s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
