package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoolhq/sms-portal-api/internal/models"
)

func entryFor(op models.SyncOp, payload string) models.SyncQueueEntry {
	return models.SyncQueueEntry{
		ID:         "e1",
		Op:         op,
		Collection: models.CollectionStudents,
		Payload:    json.RawMessage(payload),
	}
}

func TestHTTPEndpointPutsUpserts(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	endpoint := NewHTTPEndpoint(server.URL, time.Second)
	err := endpoint.Push(context.Background(), entryFor(models.SyncOpCreate, `{"id":"s1","full_name":"Ahmed Ali"}`))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/students/s1", gotPath)
}

func TestHTTPEndpointDeletes(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	endpoint := NewHTTPEndpoint(server.URL, time.Second)
	err := endpoint.Push(context.Background(), entryFor(models.SyncOpDelete, `{"id":"s1"}`))
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestHTTPEndpointDeleteOfMissingRecordConverges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	endpoint := NewHTTPEndpoint(server.URL, time.Second)
	err := endpoint.Push(context.Background(), entryFor(models.SyncOpDelete, `{"id":"gone"}`))
	require.NoError(t, err)
}

func TestHTTPEndpointSurfacesRemoteErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	endpoint := NewHTTPEndpoint(server.URL, time.Second)
	err := endpoint.Push(context.Background(), entryFor(models.SyncOpUpdate, `{"id":"s1"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPEndpointRejectsPayloadWithoutID(t *testing.T) {
	endpoint := NewHTTPEndpoint("http://localhost:0", time.Second)
	err := endpoint.Push(context.Background(), entryFor(models.SyncOpCreate, `{"name":"no id"}`))
	require.Error(t, err)
}

func TestLogEndpointAcknowledgesEverything(t *testing.T) {
	endpoint := NewLogEndpoint(nil)
	require.NoError(t, endpoint.Push(context.Background(), entryFor(models.SyncOpCreate, `{"id":"s1"}`)))
	require.NoError(t, endpoint.Push(context.Background(), entryFor(models.SyncOpDelete, `{"id":"s1"}`)))
}
