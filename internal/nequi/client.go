// Package nequi is the HTTP client for the demo-nequi-push payment service.
// All eight gateway endpoints funnel into the single Do call, parameterized
// by an Operation descriptor.
package nequi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alovak/pos-gateway/gateway/models"
	"golang.org/x/exp/slog"
)

// Operation describes one upstream call: its HTTP method and resolved path.
type Operation struct {
	Name   string
	Method string
	Path   string
}

func SendPush() Operation {
	return Operation{Name: "send-push", Method: http.MethodPost, Path: "/payments/send-push"}
}

func CancelPush() Operation {
	return Operation{Name: "cancel-push", Method: http.MethodPost, Path: "/payments/cancel-push"}
}

func TransactionStatus(transactionID string) Operation {
	return Operation{Name: "transaction-status", Method: http.MethodGet, Path: "/payments/status/" + url.PathEscape(transactionID)}
}

func Reverse() Operation {
	return Operation{Name: "reverse", Method: http.MethodPost, Path: "/payments/reverse"}
}

func CreateQR() Operation {
	return Operation{Name: "create-qr", Method: http.MethodPost, Path: "/payments-qr/crear-qr"}
}

func QRStatus(qrID string) Operation {
	return Operation{Name: "qr-status", Method: http.MethodGet, Path: "/payments-qr/estado-qr/" + url.PathEscape(qrID)}
}

func CancelQR(qrID string) Operation {
	return Operation{Name: "cancel-qr", Method: http.MethodPost, Path: "/payments-qr/cancelar-qr/" + url.PathEscape(qrID)}
}

// UpstreamError is returned when the upstream call fails in transport or
// comes back with a non-2xx status. Status is 0 for transport failures.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s status=%d body=%s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Op, e.Message)
}

type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

func New(base string, hc *http.Client, logger *slog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   hc,
		logger: logger.With(slog.String("component", "nequi-client")),
	}
}

// Do performs the upstream call for op, carrying the terminal headers, and
// returns the upstream response body verbatim. body may be nil for GETs.
func (c *Client) Do(ctx context.Context, op Operation, headers models.Headers, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s body: %w", op.Name, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, c.base+op.Path, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", op.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-station-code", headers.StationCode)
	req.Header.Set("x-equipment-code", headers.EquipmentCode)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("upstream call failed", slog.String("op", op.Name), "err", err)
		return nil, &UpstreamError{Op: op.Name, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op.Name, Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode/100 != 2 {
		c.logger.Error("upstream returned non-2xx",
			slog.String("op", op.Name), slog.Int("status", resp.StatusCode))
		return nil, &UpstreamError{Op: op.Name, Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &UpstreamError{Op: op.Name, Status: resp.StatusCode, Message: "invalid JSON in upstream response"}
	}

	return json.RawMessage(raw), nil
}
