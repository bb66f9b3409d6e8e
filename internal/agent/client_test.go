package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/timer"
)

func errorBody(code, message string) string {
	raw, _ := json.Marshal(map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
	return string(raw)
}

func TestClientMapsWireErrorsToSentinels(t *testing.T) {
	cases := []struct {
		code     string
		status   int
		sentinel error
	}{
		{"active_session_exists", http.StatusConflict, timer.ErrSessionConflict},
		{"already_finalized", http.StatusConflict, timer.ErrSessionFinalized},
		{"session_not_found", http.StatusNotFound, timer.ErrSessionNotFound},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(errorBody(tc.code, "nope")))
			}))
			defer server.Close()

			client := NewClient(server.URL, "tok", time.Second)
			_, err := client.StartSession(context.Background(), timer.StartSessionRequest{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestClientStartSessionSendsBearerAndBody(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"s1","plannedDuration":6000}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", time.Second)
	session, err := client.StartSession(context.Background(), timer.StartSessionRequest{
		StartTime:        time.Now().UTC(),
		PlannedDuration:  6000,
		PomodorosPlanned: 4,
		Task:             "focus",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "s1", session.ID)
	assert.Equal(t, float64(6000), gotBody["plannedDuration"])
	assert.Equal(t, "focus", gotBody["task"])
}

func TestClientRecordPomodoroPatchesCount(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/sessions/s1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"s1","pomodorosCompleted":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", time.Second)
	require.NoError(t, client.RecordPomodoro(context.Background(), "s1"))
	assert.Equal(t, float64(1), gotBody["pomodorosCompleted"])
}

func TestClientUnparseableErrorFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", time.Second)
	_, err := client.TimerStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
