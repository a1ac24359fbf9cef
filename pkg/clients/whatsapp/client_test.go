package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/farmledger/internal/config"
)

func TestSendText(t *testing.T) {
	var got textPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/12345/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "token",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	}, nil)

	id, err := client.SendText(context.Background(), "224600000000", "weekly report")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "wamid.1" {
		t.Fatalf("message id = %q", id)
	}
	if got.To != "224600000000" || got.Text.Body != "weekly report" || got.MessagingProduct != "whatsapp" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestSendTextSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient","code":131030}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"}, nil)

	_, err := client.SendText(context.Background(), "nobody", "hi")
	if err == nil || !strings.Contains(err.Error(), "131030") || !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("expected api error, got %v", err)
	}

	if _, err := client.SendText(context.Background(), " ", "hi"); err == nil {
		t.Fatalf("expected an error for an empty recipient")
	}
}
