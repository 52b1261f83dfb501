package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func replyHandler(t *testing.T, capture *Request, text string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
			http.Error(w, "bad envelope", http.StatusBadRequest)
			return
		}
		resp := Response{
			ProtocolVersion: ProtocolVersion,
			Result: &Message{
				MessageID: "reply-1",
				Role:      RoleAgent,
				Parts:     []Part{{Kind: "text", Text: text}},
			},
			ID: capture.ID,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestSendEnvelope(t *testing.T) {
	var captured Request
	server := httptest.NewServer(replyHandler(t, &captured, "I can do 14 HBAR."))
	defer server.Close()

	client := NewClient(2 * time.Second)
	reply, err := client.Send(context.Background(), server.URL, RoleUser, "Would you take 13 HBAR?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if captured.ProtocolVersion != ProtocolVersion {
		t.Errorf("protocolVersion = %q, want %q", captured.ProtocolVersion, ProtocolVersion)
	}
	if captured.Method != MethodSend {
		t.Errorf("method = %q, want %q", captured.Method, MethodSend)
	}
	if captured.ID == 0 {
		t.Error("request id is zero")
	}
	msg := captured.Params.Message
	if msg.MessageID == "" {
		t.Error("messageId is empty")
	}
	if msg.Role != RoleUser {
		t.Errorf("role = %q, want %q", msg.Role, RoleUser)
	}
	if len(msg.Parts) != 1 || msg.Parts[0].Kind != "text" || msg.Parts[0].Text != "Would you take 13 HBAR?" {
		t.Errorf("parts = %+v, want single text part", msg.Parts)
	}

	if reply.MessageID != "reply-1" || reply.Text != "I can do 14 HBAR." {
		t.Errorf("reply = %+v", reply)
	}
}

func TestSendRequestIDsIncrease(t *testing.T) {
	var captured Request
	server := httptest.NewServer(replyHandler(t, &captured, "ok"))
	defer server.Close()

	client := NewClient(2 * time.Second)
	if _, err := client.Send(context.Background(), server.URL, RoleUser, "first"); err != nil {
		t.Fatal(err)
	}
	first := captured.ID
	if _, err := client.Send(context.Background(), server.URL, RoleUser, "second"); err != nil {
		t.Fatal(err)
	}
	if captured.ID <= first {
		t.Errorf("second id = %d, want > %d", captured.ID, first)
	}
}

func TestSendTimeoutIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(50 * time.Millisecond)
	_, err := client.Send(context.Background(), server.URL, RoleUser, "anyone there?")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Send error = %v, want ErrUnreachable", err)
	}
}

func TestSendServerErrorIsNotUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(2 * time.Second)
	_, err := client.Send(context.Background(), server.URL, RoleUser, "hello")
	if err == nil {
		t.Fatal("Send() error = nil, want HTTP failure")
	}
	if errors.Is(err, ErrUnreachable) {
		t.Errorf("Send error = %v; HTTP status failures are not transport failures", err)
	}
}

func TestSendProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := Response{
			ProtocolVersion: ProtocolVersion,
			Error: &struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}{Code: -32600, Message: "invalid request"},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(2 * time.Second)
	_, err := client.Send(context.Background(), server.URL, RoleUser, "hello")
	if err == nil || errors.Is(err, ErrUnreachable) {
		t.Fatalf("Send error = %v, want protocol-level error", err)
	}
}
