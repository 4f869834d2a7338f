// Package plandesc пишет короткое рекламное описание тарифа через Gemini API.
//
// Без ключа API генератор выключен и возвращает текст-заглушку, как и при
// ошибке вызова: описание тарифа не обязательно, сбой не мешает его сохранить.
package plandesc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/config"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
)

const (
	// UnavailableText ответ, когда ключ API не задан.
	UnavailableText = "AI description generation is currently unavailable."
	// FailedText ответ, когда вызов API не удался.
	FailedText = "Failed to generate AI description. Please try again later."
)

// ErrDisabled ключ API не настроен.
var ErrDisabled = errors.New("description generator is not configured")

// Result описание тарифа. Generated false, если вернулась заглушка.
type Result struct {
	Description string `json:"description"`
	Generated   bool   `json:"generated"`
}

// Generator клиент generateContent.
type Generator struct {
	apiKey     string
	model      string
	baseURL    string
	currency   string
	httpClient *http.Client
	log        *slog.Logger
}

// New создаёт генератор. Пустой cfg.APIKey выключает его.
func New(cfg config.AI, currencySymbol string, log *slog.Logger) *Generator {
	return &Generator{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		currency:   currencySymbol,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Enabled сообщает, задан ли ключ API.
func (g *Generator) Enabled() bool {
	return g.apiKey != ""
}

// Prompt текст запроса к модели.
func Prompt(name string, speed int, price float64, currency string) string {
	return fmt.Sprintf("Generate a short, catchy, and appealing marketing description for a WiFi plan with the following details:\n"+
		"- Plan Name: %q\n"+
		"- Speed: %d Mbps\n"+
		"- Price: %s%s/month\n\n"+
		"The description should be no more than 2 sentences and highlight the benefits for the user "+
		"(e.g., streaming, gaming, work from home). Do not include the price or speed in the description itself.",
		name, speed, currency, billing.FormatAmount(price))
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate запрашивает описание у модели.
func (g *Generator) Generate(ctx context.Context, name string, speed int, price float64) (string, error) {
	const op = "plandesc.Generate"

	if !g.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{
		Role:  "user",
		Parts: []part{{Text: Prompt(name, speed, price, g.currency)}},
	}}})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%s: decode: %w", op, err)
	}
	var text strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	desc := strings.TrimSpace(text.String())
	if desc == "" {
		return "", fmt.Errorf("%s: empty response", op)
	}
	return desc, nil
}

// Describe возвращает описание или заглушку вместо ошибки.
func (g *Generator) Describe(ctx context.Context, name string, speed int, price float64) Result {
	const op = "plandesc.Describe"

	desc, err := g.Generate(ctx, name, speed, price)
	switch {
	case errors.Is(err, ErrDisabled):
		g.log.Warn("api key not set, plan description disabled", sl.Op(op))
		return Result{Description: UnavailableText}
	case err != nil:
		g.log.Error("failed to generate plan description", sl.Op(op), slog.String("plan", name), sl.Err(err))
		return Result{Description: FailedText}
	}
	return Result{Description: desc, Generated: true}
}
