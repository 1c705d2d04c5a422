package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alovak/pos-gateway/gateway/models"
	"github.com/alovak/pos-gateway/internal/metrics"
	"github.com/alovak/pos-gateway/internal/nequi"
	"golang.org/x/exp/slog"
)

// Service authorizes POS terminals against the equipment registry and
// forwards their payment operations to the upstream service.
type Service struct {
	store   EquipmentStore
	client  *nequi.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store EquipmentStore, client *nequi.Client, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		client:  client,
		logger:  logger.With(slog.String("component", "gateway")),
		metrics: m,
	}
}

// IsAuthorized reports whether an active, authorized terminal with the given
// MAC exists. It fails closed: a store failure is logged and reported as not
// authorized, never as an error.
func (s *Service) IsAuthorized(ctx context.Context, mac string) bool {
	count, err := s.store.CountAuthorized(ctx, mac)
	if err != nil {
		s.logger.Error("checking equipment authorization", slog.String("mac", mac), "err", err)
		return false
	}
	return count > 0
}

// HeadersForMAC derives the upstream headers from the terminal record.
// Returns ErrNotFound when no active, authorized terminal matches.
func (s *Service) HeadersForMAC(ctx context.Context, mac string) (*models.Headers, error) {
	equipment, err := s.store.FindByMAC(ctx, mac)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("deriving headers for mac %s: %w", mac, err)
	}
	return &models.Headers{
		StationCode:   equipment.Serial,
		EquipmentCode: equipment.MAC,
	}, nil
}

// ValidationResult is the outcome of the equipment-validate endpoint.
type ValidationResult struct {
	Authorized bool
	Equipment  *models.EquipmentView
}

// ValidateEquipment checks authorization and fetches the public view of the
// terminal. When the terminal passes authorization but the detail lookup
// finds nothing (deleted in between), the result is authorized with a nil
// equipment view rather than an error.
func (s *Service) ValidateEquipment(ctx context.Context, mac string) (*ValidationResult, error) {
	result := &ValidationResult{Authorized: s.IsAuthorized(ctx, mac)}
	if !result.Authorized {
		return result, nil
	}

	equipment, err := s.store.FindByMAC(ctx, mac)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result, nil
		}
		return nil, fmt.Errorf("fetching equipment %s: %w", mac, err)
	}
	result.Equipment = equipment.View()
	return result, nil
}

// Forward is the single template behind all eight POS operations: check
// authorization, derive the terminal headers, issue exactly one upstream
// call, and hand back the upstream body untouched.
func (s *Service) Forward(ctx context.Context, op nequi.Operation, mac string, body any) (json.RawMessage, error) {
	if !s.IsAuthorized(ctx, mac) {
		s.logger.Warn("rejecting unauthorized equipment",
			slog.String("op", op.Name), slog.String("mac", mac))
		s.metrics.AuthorizationDeniedTotal.Inc()
		s.metrics.ForwardedTotal.WithLabelValues(op.Name, metrics.OutcomeUnauthorized).Inc()
		return nil, ErrUnauthorized
	}

	headers, err := s.HeadersForMAC(ctx, mac)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// passed authorization but the record is gone
			s.logger.Error("equipment vanished after authorization",
				slog.String("op", op.Name), slog.String("mac", mac))
			s.metrics.ForwardedTotal.WithLabelValues(op.Name, metrics.OutcomeDeviceUnavailable).Inc()
			return nil, ErrDeviceUnavailable
		}
		s.metrics.ForwardedTotal.WithLabelValues(op.Name, metrics.OutcomeStoreError).Inc()
		return nil, err
	}

	start := time.Now()
	data, err := s.client.Do(ctx, op, *headers, body)
	s.metrics.UpstreamDuration.WithLabelValues(op.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("forwarding operation failed",
			slog.String("op", op.Name), slog.String("mac", mac), "err", err)
		s.metrics.ForwardedTotal.WithLabelValues(op.Name, metrics.OutcomeUpstreamError).Inc()
		return nil, err
	}

	s.logger.Info("operation forwarded",
		slog.String("op", op.Name), slog.String("mac", mac))
	s.metrics.ForwardedTotal.WithLabelValues(op.Name, metrics.OutcomeSuccess).Inc()
	return data, nil
}
