package nequi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alovak/pos-gateway/gateway/models"
	"github.com/alovak/pos-gateway/internal/nequi"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testHeaders = models.Headers{StationCode: "POS-001", EquipmentCode: "AA:BB:CC:DD:EE:FF"}

func TestOperationDescriptors(t *testing.T) {
	cases := []struct {
		op     nequi.Operation
		method string
		path   string
	}{
		{nequi.SendPush(), http.MethodPost, "/payments/send-push"},
		{nequi.CancelPush(), http.MethodPost, "/payments/cancel-push"},
		{nequi.TransactionStatus("T1"), http.MethodGet, "/payments/status/T1"},
		{nequi.Reverse(), http.MethodPost, "/payments/reverse"},
		{nequi.CreateQR(), http.MethodPost, "/payments-qr/crear-qr"},
		{nequi.QRStatus("QR9"), http.MethodGet, "/payments-qr/estado-qr/QR9"},
		{nequi.CancelQR("QR9"), http.MethodPost, "/payments-qr/cancelar-qr/QR9"},
	}

	for _, tc := range cases {
		t.Run(tc.op.Name, func(t *testing.T) {
			require.Equal(t, tc.method, tc.op.Method)
			require.Equal(t, tc.path, tc.op.Path)
		})
	}
}

func TestDo_SetsEquipmentHeaders(t *testing.T) {
	var gotStation, gotEquipment, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStation = r.Header.Get("x-station-code")
		gotEquipment = r.Header.Get("x-equipment-code")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := nequi.New(srv.URL, nil, testLogger())
	_, err := client.Do(context.Background(), nequi.SendPush(), testHeaders, models.PushPayload{PhoneNumber: "3001234567", Value: 5000})
	require.NoError(t, err)

	require.Equal(t, "POS-001", gotStation)
	require.Equal(t, "AA:BB:CC:DD:EE:FF", gotEquipment)
	require.Equal(t, "application/json", gotContentType)
}

func TestDo_ReturnsBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transactionId":"T1","nested":{"a":[1,2,3]}}`))
	}))
	defer srv.Close()

	client := nequi.New(srv.URL, nil, testLogger())
	data, err := client.Do(context.Background(), nequi.TransactionStatus("T1"), testHeaders, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"transactionId":"T1","nested":{"a":[1,2,3]}}`, string(data))
}

func TestDo_EmptyBodyBecomesNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := nequi.New(srv.URL, nil, testLogger())
	data, err := client.Do(context.Background(), nequi.CancelQR("QR9"), testHeaders, struct{}{})
	require.NoError(t, err)
	require.Equal(t, "null", string(data))
}

func TestDo_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"insufficient funds"}`))
	}))
	defer srv.Close()

	client := nequi.New(srv.URL, nil, testLogger())
	_, err := client.Do(context.Background(), nequi.SendPush(), testHeaders, models.PushPayload{PhoneNumber: "3001234567", Value: 5000})

	var upstreamErr *nequi.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, http.StatusUnprocessableEntity, upstreamErr.Status)
	require.Contains(t, upstreamErr.Message, "insufficient funds")
}

func TestDo_InvalidJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := nequi.New(srv.URL, nil, testLogger())
	_, err := client.Do(context.Background(), nequi.SendPush(), testHeaders, models.PushPayload{PhoneNumber: "3001234567", Value: 5000})

	var upstreamErr *nequi.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := nequi.New(srv.URL, nil, testLogger())
	_, err := client.Do(context.Background(), nequi.SendPush(), testHeaders, models.PushPayload{PhoneNumber: "3001234567", Value: 5000})

	var upstreamErr *nequi.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Zero(t, upstreamErr.Status)
}
