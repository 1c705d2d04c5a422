package models

import "fmt"

// Request bodies accepted by the POS endpoints. Every request carries the
// terminal MAC, which is used for authorization and header derivation only
// and is stripped from the payload forwarded upstream.

type SendPushRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Value       float64 `json:"value"`
	MAC         string  `json:"mac"`
}

func (r SendPushRequest) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("phoneNumber is required")
	}
	if r.Value < 1 {
		return fmt.Errorf("value must be at least 1")
	}
	if r.MAC == "" {
		return fmt.Errorf("mac is required")
	}
	return nil
}

// Payload is the body forwarded to the upstream service.
func (r SendPushRequest) Payload() PushPayload {
	return PushPayload{PhoneNumber: r.PhoneNumber, Value: r.Value}
}

type CancelPushRequest struct {
	TransactionID string `json:"transactionId"`
	MAC           string `json:"mac"`
}

func (r CancelPushRequest) Validate() error {
	if r.TransactionID == "" {
		return fmt.Errorf("transactionId is required")
	}
	if r.MAC == "" {
		return fmt.Errorf("mac is required")
	}
	return nil
}

func (r CancelPushRequest) Payload() TransactionPayload {
	return TransactionPayload{TransactionID: r.TransactionID}
}

type ReverseRequest struct {
	TransactionID string `json:"transactionId"`
	MAC           string `json:"mac"`
}

func (r ReverseRequest) Validate() error {
	if r.TransactionID == "" {
		return fmt.Errorf("transactionId is required")
	}
	if r.MAC == "" {
		return fmt.Errorf("mac is required")
	}
	return nil
}

func (r ReverseRequest) Payload() TransactionPayload {
	return TransactionPayload{TransactionID: r.TransactionID}
}

type CreateQRRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Value       float64 `json:"value"`
	MAC         string  `json:"mac"`
}

func (r CreateQRRequest) Validate() error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("phoneNumber is required")
	}
	if r.Value < 1 {
		return fmt.Errorf("value must be at least 1")
	}
	if r.MAC == "" {
		return fmt.Errorf("mac is required")
	}
	return nil
}

func (r CreateQRRequest) Payload() PushPayload {
	return PushPayload{PhoneNumber: r.PhoneNumber, Value: r.Value}
}

type CancelQRRequest struct {
	QRID string `json:"qrId"`
	MAC  string `json:"mac"`
}

func (r CancelQRRequest) Validate() error {
	if r.QRID == "" {
		return fmt.Errorf("qrId is required")
	}
	if r.MAC == "" {
		return fmt.Errorf("mac is required")
	}
	return nil
}

// PushPayload is the upstream body for send-push and create-qr.
type PushPayload struct {
	PhoneNumber string  `json:"phoneNumber"`
	Value       float64 `json:"value"`
}

// TransactionPayload is the upstream body for cancel-push and reverse.
type TransactionPayload struct {
	TransactionID string `json:"transactionId"`
}
