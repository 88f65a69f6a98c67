package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Songmu/retry"
	"github.com/pyama86/snowpanel/domain/entity"
)

const incidentsPath = "/api/incidents"

type IncidentAPIRepository struct {
	client        *http.Client
	baseURL       string
	retryCount    uint
	retryInterval time.Duration
}

// NewIncidentAPIRepository はclientをそのまま使う。SessionGate.Clientを渡せばセッションクッキーが付く
func NewIncidentAPIRepository(client *http.Client, c APIConfig) *IncidentAPIRepository {
	retryCount := c.RetryCount
	if retryCount == 0 {
		retryCount = 1
	}
	return &IncidentAPIRepository{
		client:        client,
		baseURL:       strings.TrimRight(c.BaseURL, "/"),
		retryCount:    retryCount,
		retryInterval: c.RetryInterval,
	}
}

type listResponse struct {
	Result []entity.Incident `json:"result"`
}

// Incidents だけは再試行する。作成・更新・削除は一度しか送らない
func (r *IncidentAPIRepository) Incidents(ctx context.Context) ([]entity.Incident, error) {
	var res listResponse
	err := retry.Retry(r.retryCount, r.retryInterval, func() error {
		if err := ctx.Err(); err != nil {
			return &RequestError{Op: "list", URL: r.baseURL + incidentsPath, Err: err}
		}
		err := r.do(ctx, "list", http.MethodGet, incidentsPath, nil, &res)
		if err != nil {
			slog.Warn("Incidents", slog.Any("err", err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Result == nil {
		return []entity.Incident{}, nil
	}
	return res.Result, nil
}

func (r *IncidentAPIRepository) CreateIncident(ctx context.Context, payload entity.Payload) (*entity.Incident, error) {
	var raw json.RawMessage
	if err := r.do(ctx, "create", http.MethodPost, incidentsPath, payload, &raw); err != nil {
		return nil, err
	}
	return decodeIncident(raw)
}

func (r *IncidentAPIRepository) UpdateIncident(ctx context.Context, id string, payload entity.Payload) (*entity.Incident, error) {
	var raw json.RawMessage
	if err := r.do(ctx, "update", http.MethodPut, incidentPath(id), payload, &raw); err != nil {
		return nil, err
	}
	return decodeIncident(raw)
}

func (r *IncidentAPIRepository) DeleteIncident(ctx context.Context, id string) error {
	return r.do(ctx, "delete", http.MethodDelete, incidentPath(id), nil, nil)
}

func incidentPath(id string) string {
	return incidentsPath + "/" + url.PathEscape(id)
}

func (r *IncidentAPIRepository) do(ctx context.Context, op, method, path string, body, out any) error {
	u := r.baseURL + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Op: op, URL: u, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RequestError{Op: op, URL: u, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: err}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{Op: op, URL: u, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeIncident は {"result": {...}} と素のレコードのどちらも受け付ける
func decodeIncident(raw json.RawMessage) (*entity.Incident, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Result) > 0 {
		raw = envelope.Result
	}
	var inc entity.Incident
	if err := json.Unmarshal(raw, &inc); err != nil {
		// 作成自体は成功しているので応答の形式違いはエラーにしない
		slog.Warn("Unexpected incident response", slog.Any("err", err))
		return nil, nil
	}
	return &inc, nil
}
