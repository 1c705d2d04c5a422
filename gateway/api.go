package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alovak/pos-gateway/gateway/models"
	"github.com/alovak/pos-gateway/internal/nequi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

const msgUnauthorized = "Equipo no autorizado o no encontrado"

// API is the HTTP surface of the POS gateway.
type API struct {
	service *Service
	logger  *slog.Logger
}

func NewAPI(service *Service, logger *slog.Logger) *API {
	return &API{
		service: service,
		logger:  logger.With(slog.String("component", "api")),
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/pos", func(r chi.Router) {
		r.Post("/payment/send-push", a.sendPushPayment)
		r.Post("/payment/cancel-push", a.cancelPushPayment)
		r.Get("/payment/status/{transactionId}/{mac}", a.paymentStatus)
		r.Post("/payment/reverse", a.reversePayment)
		r.Post("/qr/create", a.createQR)
		r.Get("/qr/status/{qrId}/{mac}", a.qrStatus)
		r.Post("/qr/cancel", a.cancelQR)
		r.Get("/equipment/validate/{mac}", a.validateEquipment)
	})
}

// envelope is the uniform success response for forwarded operations.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// errorBody follows the error shape POS clients already parse.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func (a *API) sendPushPayment(w http.ResponseWriter, r *http.Request) {
	var req models.SendPushRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.forward(w, r, nequi.SendPush(), req.MAC, req.Payload(),
		"Notificación push enviada exitosamente")
}

func (a *API) cancelPushPayment(w http.ResponseWriter, r *http.Request) {
	var req models.CancelPushRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.forward(w, r, nequi.CancelPush(), req.MAC, req.Payload(),
		"Notificación push cancelada exitosamente")
}

func (a *API) paymentStatus(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")
	mac := chi.URLParam(r, "mac")
	if transactionID == "" || mac == "" {
		a.writeError(w, http.StatusBadRequest, "transactionId and mac are required")
		return
	}
	a.forward(w, r, nequi.TransactionStatus(transactionID), mac, nil,
		"Estado de transacción consultado exitosamente")
}

func (a *API) reversePayment(w http.ResponseWriter, r *http.Request) {
	var req models.ReverseRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.forward(w, r, nequi.Reverse(), req.MAC, req.Payload(),
		"Transacción revertida exitosamente")
}

func (a *API) createQR(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQRRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.forward(w, r, nequi.CreateQR(), req.MAC, req.Payload(),
		"Código QR creado exitosamente")
}

func (a *API) qrStatus(w http.ResponseWriter, r *http.Request) {
	qrID := chi.URLParam(r, "qrId")
	mac := chi.URLParam(r, "mac")
	if qrID == "" || mac == "" {
		a.writeError(w, http.StatusBadRequest, "qrId and mac are required")
		return
	}
	a.forward(w, r, nequi.QRStatus(qrID), mac, nil,
		"Estado de QR consultado exitosamente")
}

func (a *API) cancelQR(w http.ResponseWriter, r *http.Request) {
	var req models.CancelQRRequest
	if !a.decode(w, r, &req) {
		return
	}
	// The upstream cancel-qr endpoint takes the id in the path and an empty
	// JSON body.
	a.forward(w, r, nequi.CancelQR(req.QRID), req.MAC, struct{}{},
		"Código QR cancelado exitosamente")
}

func (a *API) validateEquipment(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	if mac == "" {
		a.writeError(w, http.StatusBadRequest, "mac is required")
		return
	}

	result, err := a.service.ValidateEquipment(r.Context(), mac)
	if err != nil {
		a.logger.Error("validating equipment", slog.String("mac", mac), "err", err)
		a.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	a.writeJSON(w, http.StatusOK, struct {
		Success    bool                  `json:"success"`
		Authorized bool                  `json:"authorized"`
		Equipment  *models.EquipmentView `json:"equipment"`
	}{
		Success:    true,
		Authorized: result.Authorized,
		Equipment:  result.Equipment,
	})
}

// forward runs the shared authorize-and-relay template and writes the
// response envelope.
func (a *API) forward(w http.ResponseWriter, r *http.Request, op nequi.Operation, mac string, body any, successMessage string) {
	data, err := a.service.Forward(r.Context(), op, mac, body)
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: successMessage,
		Data:    data,
	})
}

// decode parses and validates a JSON request body. Unknown fields are
// rejected. Returns false after writing the error response.
func (a *API) decode(w http.ResponseWriter, r *http.Request, req interface{ Validate() error }) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := req.Validate(); err != nil {
		a.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (a *API) writeFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnauthorized) {
		a.writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	// Upstream business errors and transport failures are both reported as
	// internal errors; the upstream status stays in the logs and metrics.
	a.writeError(w, http.StatusInternalServerError, err.Error())
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, errorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
