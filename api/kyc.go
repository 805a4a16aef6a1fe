package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Page wraps a paginated listing from the backend.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ClientSummary is one row of the client review table.
type ClientSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RiskLevel     string    `json:"riskLevel"`
	KYCStatus     string    `json:"kycStatus"`
	DocumentCount int       `json:"documentCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Classification is the backend's document classification verdict.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Document is a single uploaded document and its review state.
type Document struct {
	ID             string         `json:"id"`
	ClientID       string         `json:"clientId"`
	Type           string         `json:"type"`
	Status         string         `json:"status"`
	Classification Classification `json:"classification"`
	UploadedAt     time.Time      `json:"uploadedAt"`
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListClients returns one page of the client review table.
func (c *Client) ListClients(ctx context.Context, page, pageSize int) (*Page[ClientSummary], error) {
	var result Page[ClientSummary]
	if err := c.do(ctx, http.MethodGet, "/clients", pageQuery(page, pageSize), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ListClients] GET /clients")
	}
	return &result, nil
}

// GetDocument fetches a single document's review state.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	if documentID == "" {
		return nil, errors.New("[Client.GetDocument] documentID is required")
	}
	var doc Document
	if err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(documentID), nil, nil, &doc); err != nil {
		return nil, errors.Wrap(err, "[Client.GetDocument] GET /documents")
	}
	return &doc, nil
}

// ListAuditEvents returns one page of the audit trail.
func (c *Client) ListAuditEvents(ctx context.Context, page, pageSize int) (*Page[AuditEvent], error) {
	var result Page[AuditEvent]
	if err := c.do(ctx, http.MethodGet, "/audits", pageQuery(page, pageSize), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ListAuditEvents] GET /audits")
	}
	return &result, nil
}

// UnreadNotifications returns the current unread notification count.
func (c *Client) UnreadNotifications(ctx context.Context) (int, error) {
	var result struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &result); err != nil {
		return 0, errors.Wrap(err, "[Client.UnreadNotifications] GET /notifications/unread-count")
	}
	return result.Count, nil
}

func pageQuery(page, pageSize int) url.Values {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	return query
}
