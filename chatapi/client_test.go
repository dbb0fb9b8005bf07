package chatapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ateneo-app/ateneo"
	"github.com/ateneo-app/ateneo/chatapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	t.Parallel()
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"response":  "Il corso inizia a marzo.",
			"reasoning": "syllabus lookup",
			"chosen":    "RAG",
			"verified":  true,
		})
	}))
	t.Cleanup(srv.Close)

	client := chatapi.New(srv.URL)
	ans, err := client.Complete(context.Background(), ateneo.Request{
		ConversationID: "conv-1",
		CourseID:       "INF-101",
		Prompt:         "Quando inizia il corso?",
		History: []ateneo.TurnRecord{
			{Prompt: "Ciao", Answer: "Ciao! Come posso aiutarti?"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "/api/chat", gotPath)
	assert.Equal(t, "conv-1", gotBody["conversation_id"])
	assert.Equal(t, "INF-101", gotBody["course_id"])
	assert.Equal(t, "Quando inizia il corso?", gotBody["question"])
	assert.Len(t, gotBody["history"], 1)

	assert.Equal(t, "Il corso inizia a marzo.", ans.Text)
	assert.Equal(t, "syllabus lookup", ans.Reasoning)
	assert.Equal(t, map[string]any{"chosen": "RAG", "verified": true}, ans.Metadata)
}

func TestClient_Complete_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "retrieval index offline"})
	}))
	t.Cleanup(srv.Close)

	client := chatapi.New(srv.URL)
	_, err := client.Complete(context.Background(), ateneo.Request{Prompt: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval index offline")
}

func TestClient_Stop(t *testing.T) {
	t.Parallel()
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "stopping"})
	}))
	t.Cleanup(srv.Close)

	client := chatapi.New(srv.URL)
	res, err := client.Stop(context.Background(), "req-42")

	require.NoError(t, err)
	assert.Equal(t, "/api/chat/stop", gotPath)
	assert.Equal(t, "req-42", gotBody["request_id"])
	assert.True(t, res.Success)
	assert.Equal(t, "stopping", res.Message)
}

func TestClient_Reset(t *testing.T) {
	t.Parallel()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	t.Cleanup(srv.Close)

	client := chatapi.New(srv.URL)
	res, err := client.Reset(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/api/chat/reset", gotPath)
	assert.True(t, res.Success)
}

func TestClient_Reset_Unsuccessful(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "nothing to reset"})
	}))
	t.Cleanup(srv.Close)

	client := chatapi.New(srv.URL)
	res, err := client.Reset(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "nothing to reset", res.Message)
}
