package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTEIServer(t *testing.T, dim int, extra int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req EmbeddingRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		assert.True(t, req.Truncate)

		out := make(EmbeddingResponse, len(req.Inputs)+extra)
		for i := range out {
			out[i] = make([]float32, dim)
			out[i][0] = float32(i)
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
}

func TestAllMinilmL6V2_GetEmbeddings(t *testing.T) {
	srv := newTEIServer(t, 384, 0)
	defer srv.Close()

	client := NewAllMinilmL6V2(srv.URL)
	vectors, err := client.GetEmbeddings(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	for i, v := range vectors {
		assert.Len(t, v, 384)
		assert.Equal(t, float32(i), v[0])
	}
}

func TestAllMinilmL6V2_EmbedQuery(t *testing.T) {
	srv := newTEIServer(t, 384, 0)
	defer srv.Close()

	vec, err := NewAllMinilmL6V2(srv.URL).EmbedQuery(context.Background(), "peraturan")
	require.NoError(t, err)
	assert.Len(t, vec, 384)
}

func TestAllMinilmL6V2_EmptyInput(t *testing.T) {
	client := NewAllMinilmL6V2("http://127.0.0.1:0")
	vectors, err := client.GetEmbeddings(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestAllMinilmL6V2_VectorCountMismatch(t *testing.T) {
	srv := newTEIServer(t, 384, 1)
	defer srv.Close()

	_, err := NewAllMinilmL6V2(srv.URL).GetEmbeddings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVectorCount)
}

func TestAllMinilmL6V2_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewAllMinilmL6V2(srv.URL).GetEmbeddings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestAllMinilmL6V2_ServiceErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		fmt.Fprint(w, `{"error":"batch size 64 > maximum allowed batch size 32","error_type":"Validation"}`)
	}))
	defer srv.Close()

	_, err := NewAllMinilmL6V2(srv.URL+"/").GetEmbeddings(context.Background(), []string{"a"})

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, svcErr.Status)
	assert.Equal(t, "Validation", svcErr.Kind)
	assert.Equal(t, "batch size 64 > maximum allowed batch size 32", svcErr.Message)
}
