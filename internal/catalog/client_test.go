package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second, zap.NewNop()), server
}

func TestGetTrabajador(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trabajadores/T100", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"codigo":"T100","nombre_completo":"Ana Quispe","codigo_area":"A01"}`))
	})

	trabajador, err := client.GetTrabajador(context.Background(), "T100")
	require.NoError(t, err)
	assert.Equal(t, "Ana Quispe", trabajador.NombreCompleto)
	require.NotNil(t, trabajador.CodigoArea)
	assert.Equal(t, "A01", *trabajador.CodigoArea)
}

func TestGetTrabajadorCachesLookups(t *testing.T) {
	var hits int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"codigo":"T100","nombre_completo":"Ana Quispe"}`))
	})

	for i := 0; i < 3; i++ {
		_, err := client.GetTrabajador(context.Background(), "T100")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetAreaNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetArea(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestGetAreaServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetArea(context.Background(), "A01")
	assert.Error(t, err)
}

func TestSearchTrabajadores(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trabajadores", r.URL.Path)
		assert.Equal(t, "quispe", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"codigo":"T100","nombre_completo":"Ana Quispe"}]`))
	})

	result, err := client.SearchTrabajadores(context.Background(), "quispe")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "T100", result[0].Codigo)
}

func TestListAreas(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/areas", r.URL.Path)
		w.Write([]byte(`[{"codigo":"A01","descripcion":"Operaciones"},{"codigo":"A02","descripcion":"Finanzas"}]`))
	})

	areas, err := client.ListAreas(context.Background())
	require.NoError(t, err)
	assert.Len(t, areas, 2)
}
