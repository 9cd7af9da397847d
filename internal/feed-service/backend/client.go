package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/radieske/value-bet-feed/internal/feed-service/backend/dto"
)

// StatusError é devolvido quando o backend responde com status >= 300.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s http %d", e.Method, e.Path, e.Code)
}

// Client fala com o backend de análise (oportunidades, estatísticas, chat).
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New cria o client. O timeout por requisição vem do contexto de quem chama;
// o timeout do http.Client é só um teto.
func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchOpportunities faz exatamente uma chamada POST /opportunities.
// Um corpo JSON válido que não seja objeto resulta em listas vazias, não em erro.
func (c *Client) FetchOpportunities(ctx context.Context, bankroll float64) (dto.OpportunitiesResponse, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/opportunities", dto.OpportunitiesRequest{Bankroll: bankroll}, &raw); err != nil {
		return dto.OpportunitiesResponse{}, err
	}
	var out dto.OpportunitiesResponse
	_ = json.Unmarshal(raw, &out)
	return out, nil
}

func (c *Client) Statistics(ctx context.Context) (dto.Statistics, error) {
	var out dto.Statistics
	err := c.do(ctx, http.MethodGet, "/statistics", nil, &out)
	return out, err
}

// History devolve as últimas apostas registradas. limit <= 0 usa o padrão do backend (10).
func (c *Client) History(ctx context.Context, limit int) ([]dto.HistoryEntry, error) {
	path := "/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []dto.HistoryEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []dto.HistoryEntry{}
	}
	return out, nil
}

func (c *Client) Phase(ctx context.Context) (dto.Phase, error) {
	var out dto.Phase
	err := c.do(ctx, http.MethodGet, "/phase", nil, &out)
	return out, err
}

func (c *Client) Chat(ctx context.Context, message string, extra map[string]any) (string, error) {
	var out dto.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", dto.ChatRequest{Message: message, Context: extra}, &out); err != nil {
		return "", err
	}
	return out.Message.String(), nil
}

func (c *Client) RegisterBet(ctx context.Context, req dto.RegisterBetRequest) (string, error) {
	var out dto.RegisterBetResponse
	if err := c.do(ctx, http.MethodPost, "/register-bet", req, &out); err != nil {
		return "", err
	}
	return out.BetID.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return &StatusError{Method: method, Path: path, Code: res.StatusCode}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
