// Package client обращается к дашборду по протоколу действий.
// Каждый метод делает ровно один запрос и ничего не повторяет.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/http/response"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/billing"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/plandesc"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/services/shim"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

// ErrTransport сервер недоступен или ответил не конвертом.
var ErrTransport = errors.New("transport failure")

// RemoteError сервер вернул конверт со статусом error.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s", e.StatusCode, e.Message)
}

// Is позволяет проверять 404 через errors.Is(err, storage.ErrNotFound).
func (e *RemoteError) Is(target error) bool {
	switch target {
	case storage.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case shim.ErrValidation:
		return e.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// Client клиент дашборда.
type Client struct {
	apiURL     string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New создаёт клиент. baseURL без завершающего слэша, например http://localhost:8080.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken задаёт токен, с которым уходят запросы.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token возвращает текущий токен.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do выполняет запрос и раскладывает поле data конверта в out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	var env struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: unexpected response %s: %v", ErrTransport, resp.Status, err)
	}
	if env.Status != response.StatusOK {
		return &RemoteError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: bad data: %v", ErrTransport, err)
	}
	return nil
}

// Login входит под парой логин/пароль и запоминает выданный токен.
func (c *Client) Login(ctx context.Context, username, password string) (auth.Session, error) {
	const op = "client.Login"

	req, err := c.newRequest(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return auth.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	var session auth.Session
	if err := c.do(req, &session); err != nil {
		return auth.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	c.SetToken(session.Token)
	return session, nil
}

// Execute отправляет команду и декодирует результат в out.
func (c *Client) Execute(ctx context.Context, cmd shim.Command, out any) error {
	const op = "client.Execute"

	body, err := shim.NewRequest(cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/exec", body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, out); err != nil {
		return fmt.Errorf("%s %s: %w", op, cmd.Action(), err)
	}
	return nil
}

// FetchAll читает все три таблицы.
func (c *Client) FetchAll(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.Execute(ctx, shim.FetchAll{}, &snap)
	return snap, err
}

// AddSubscriber создаёт абонента и возвращает запись с id и датой подключения.
func (c *Client) AddSubscriber(ctx context.Context, in models.SubscriberInput) (models.Subscriber, error) {
	var sub models.Subscriber
	err := c.Execute(ctx, shim.AddSubscriber{Input: in}, &sub)
	return sub, err
}

// UpdateSubscriber заменяет абонента и возвращает сохранённую запись.
func (c *Client) UpdateSubscriber(ctx context.Context, upd models.SubscriberUpdate) (models.Subscriber, error) {
	var sub models.Subscriber
	err := c.Execute(ctx, shim.UpdateSubscriber{Update: upd}, &sub)
	return sub, err
}

// DeleteSubscriber удаляет абонента.
func (c *Client) DeleteSubscriber(ctx context.Context, id string) error {
	return c.Execute(ctx, shim.DeleteSubscriber{ID: id}, nil)
}

// AddPlan создаёт тариф.
func (c *Client) AddPlan(ctx context.Context, in models.PlanInput) (models.Plan, error) {
	var plan models.Plan
	err := c.Execute(ctx, shim.AddPlan{Input: in}, &plan)
	return plan, err
}

// UpdatePlan заменяет тариф.
func (c *Client) UpdatePlan(ctx context.Context, upd models.PlanUpdate) (models.Plan, error) {
	var plan models.Plan
	err := c.Execute(ctx, shim.UpdatePlan{Update: upd}, &plan)
	return plan, err
}

// DeletePlan удаляет тариф. Абоненты со ссылкой на него не меняются.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.Execute(ctx, shim.DeletePlan{ID: id}, nil)
}

// AddPayment регистрирует платёж датой сервера.
func (c *Client) AddPayment(ctx context.Context, in models.PaymentInput) (models.Payment, error) {
	var p models.Payment
	err := c.Execute(ctx, shim.AddPayment{Input: in}, &p)
	return p, err
}

// DeletePayment удаляет платёж.
func (c *Client) DeletePayment(ctx context.Context, id string) error {
	return c.Execute(ctx, shim.DeletePayment{ID: id}, nil)
}

// Stats читает сводку для главной страницы.
func (c *Client) Stats(ctx context.Context) (billing.Summary, error) {
	const op = "client.Stats"

	req, err := c.newRequest(ctx, http.MethodGet, "/stats", nil)
	if err != nil {
		return billing.Summary{}, fmt.Errorf("%s: %w", op, err)
	}
	var s billing.Summary
	if err := c.do(req, &s); err != nil {
		return billing.Summary{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// DescribePlan просит сервер сочинить описание тарифа. Если генератор
// выключен или упал, сервер отвечает успехом с текстом-заглушкой.
func (c *Client) DescribePlan(ctx context.Context, name string, speed int, price float64) (plandesc.Result, error) {
	const op = "client.DescribePlan"

	req, err := c.newRequest(ctx, http.MethodPost, "/plans/describe", map[string]any{
		"name":  name,
		"speed": speed,
		"price": price,
	})
	if err != nil {
		return plandesc.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	var out plandesc.Result
	if err := c.do(req, &out); err != nil {
		return plandesc.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// DueReminder напоминание вместе с готовой ссылкой mailto.
type DueReminder struct {
	billing.Reminder
	Mailto string `json:"mailto"`
}

// Reminders читает абонентов, которым скоро платить.
func (c *Client) Reminders(ctx context.Context) ([]DueReminder, error) {
	const op = "client.Reminders"

	req, err := c.newRequest(ctx, http.MethodGet, "/reminders", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var out []DueReminder
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Export скачивает книгу xlsx в w и возвращает имя файла из заголовка ответа.
func (c *Client) Export(ctx context.Context, w io.Writer) (string, error) {
	const op = "client.Export"

	req, err := c.newRequest(ctx, http.MethodGet, "/export", nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env response.Response
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return "", fmt.Errorf("%s: %w: unexpected status %s", op, ErrTransport, resp.Status)
		}
		return "", fmt.Errorf("%s: %w", op, &RemoteError{StatusCode: resp.StatusCode, Message: env.Message})
	}

	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}
	return name, nil
}
