package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dquispe/vacaciones-engine/internal/domain/flow"
	"github.com/dquispe/vacaciones-engine/internal/engine"
	"github.com/dquispe/vacaciones-engine/internal/models"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockSolicitudStore struct {
	created      []*models.Solicitud
	getByIDTxFn  func(ctx context.Context, tx *sql.Tx, id int64) (*models.Solicitud, error)
	getByIDFn    func(ctx context.Context, id int64) (*models.Solicitud, error)
	estadoMoves  []string
	anularCalls  int
	anularResult bool
}

func (m *mockSolicitudStore) Create(ctx context.Context, tx *sql.Tx, s *models.Solicitud) error {
	s.ID = int64(len(m.created) + 1)
	m.created = append(m.created, s)
	return nil
}

func (m *mockSolicitudStore) GetByID(ctx context.Context, id int64) (*models.Solicitud, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSolicitudStore) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Solicitud, error) {
	if m.getByIDTxFn != nil {
		return m.getByIDTxFn(ctx, tx, id)
	}
	return nil, nil
}

func (m *mockSolicitudStore) UpdateEstado(ctx context.Context, tx *sql.Tx, id int64, from, to models.EstadoSolicitud, usuario string) (bool, error) {
	m.estadoMoves = append(m.estadoMoves, string(from)+"->"+string(to))
	return true, nil
}

func (m *mockSolicitudStore) Anular(ctx context.Context, tx *sql.Tx, id int64, motivo, usuario string) (bool, error) {
	m.anularCalls++
	return m.anularResult, nil
}

func (m *mockSolicitudStore) List(ctx context.Context, f models.SolicitudFilters) ([]*models.Solicitud, int, error) {
	return nil, 0, nil
}

type decidedCall struct {
	id     int64
	estado models.EstadoAprobacion
}

type mockAprobacionStore struct {
	chains       map[int64][]*models.Aprobacion
	createdChain []*models.Aprobacion
	decided      []decidedCall
	decideResult bool
	notificados  []int64
}

func newMockAprobacionStore() *mockAprobacionStore {
	return &mockAprobacionStore{chains: make(map[int64][]*models.Aprobacion), decideResult: true}
}

func (m *mockAprobacionStore) CreateChain(ctx context.Context, tx *sql.Tx, aprobaciones []*models.Aprobacion) error {
	for i, a := range aprobaciones {
		a.ID = int64(i + 1)
	}
	m.createdChain = aprobaciones
	return nil
}

func (m *mockAprobacionStore) GetBySolicitud(ctx context.Context, idSolicitud int64) ([]*models.Aprobacion, error) {
	return m.chains[idSolicitud], nil
}

func (m *mockAprobacionStore) GetBySolicitudTx(ctx context.Context, tx *sql.Tx, idSolicitud int64) ([]*models.Aprobacion, error) {
	return m.chains[idSolicitud], nil
}

func (m *mockAprobacionStore) Decide(ctx context.Context, tx *sql.Tx, id int64, estado models.EstadoAprobacion, observacion, usuario, ip string) (bool, error) {
	m.decided = append(m.decided, decidedCall{id: id, estado: estado})
	if m.decideResult {
		for _, chain := range m.chains {
			for _, a := range chain {
				if a.ID == id {
					a.Estado = estado
				}
			}
		}
	}
	return m.decideResult, nil
}

func (m *mockAprobacionStore) MarkNotificado(ctx context.Context, id int64) error {
	m.notificados = append(m.notificados, id)
	return nil
}

func (m *mockAprobacionStore) ListPendientesPorAprobador(ctx context.Context, aprobador string) ([]*models.Aprobacion, error) {
	return nil, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	m.calls++
	return fn(nil)
}

type notifiedLevel struct {
	solicitud int64
	nivel     int
}

type mockNotifier struct {
	sent []notifiedLevel
	err  error
}

func (m *mockNotifier) NotifyApprover(ctx context.Context, s *models.Solicitud, a *models.Aprobacion) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, notifiedLevel{solicitud: s.ID, nivel: a.Nivel})
	return nil
}

type staticConfigStore struct{ rules []*models.ConfigFlujo }

func (s staticConfigStore) ListActivas(ctx context.Context, tipo models.TipoSolicitud) ([]*models.ConfigFlujo, error) {
	return s.rules, nil
}

type staticJerarquiaStore struct{ entries []*models.Jerarquia }

func (s staticJerarquiaStore) ListActivas(ctx context.Context) ([]*models.Jerarquia, error) {
	return s.entries, nil
}

type staticSustitutoStore struct{ entries []*models.Sustituto }

func (s staticSustitutoStore) ListActivos(ctx context.Context) ([]*models.Sustituto, error) {
	return s.entries, nil
}

type serviceFixture struct {
	service      *SolicitudService
	solicitudes  *mockSolicitudStore
	aprobaciones *mockAprobacionStore
	tx           *mockTxManager
	notifier     *mockNotifier
}

func newServiceFixture(t *testing.T, rules []*models.ConfigFlujo, jerarquias []*models.Jerarquia) *serviceFixture {
	t.Helper()

	routing := NewRoutingService(
		staticConfigStore{rules: rules},
		staticJerarquiaStore{entries: jerarquias},
		staticSustitutoStore{},
		noopLogger{},
	)

	f := &serviceFixture{
		solicitudes:  &mockSolicitudStore{anularResult: true},
		aprobaciones: newMockAprobacionStore(),
		tx:           &mockTxManager{},
		notifier:     &mockNotifier{},
	}
	f.service = NewSolicitudService(
		f.solicitudes, f.aprobaciones, routing, f.tx, f.notifier, nil, noopLogger{},
	)
	return f
}

var testScope = models.OrgScope{CodigoArea: "A01", CodigoSeccion: "S01", CodigoCargo: "C01"}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func twoLevelRules() []*models.ConfigFlujo {
	return []*models.ConfigFlujo{
		{
			ID:                1,
			TipoSolicitud:     models.TipoVacaciones,
			NivelesRequeridos: 2,
			Activo:            models.ActivoSi,
			FechaDesde:        testDate(2025, time.January, 1),
		},
	}
}

func twoLevelJerarquias() []*models.Jerarquia {
	return []*models.Jerarquia{
		{
			ID: 1, CodigoTrabajadorAprobador: "JEFE1",
			TipoRelacion: models.RelacionJefeDirecto, NivelJerarquico: 1,
			Activo: models.ActivoSi, FechaDesde: testDate(2025, time.January, 1),
		},
		{
			ID: 2, CodigoTrabajadorAprobador: "GER1",
			TipoRelacion: models.RelacionGerente, NivelJerarquico: 2,
			Activo: models.ActivoSi, FechaDesde: testDate(2025, time.January, 1),
		},
	}
}

func vacationSubmit() SubmitInput {
	return SubmitInput{
		TipoSolicitud:    models.TipoVacaciones,
		CodigoTrabajador: "T100",
		Scope:            testScope,
		FechaInicio:      testDate(2025, time.July, 1),
		FechaFin:         testDate(2025, time.July, 10),
		DiasSolicitados:  10,
		Usuario:          "T100",
		Fecha:            testDate(2025, time.June, 15),
	}
}

func TestSubmitCreatesFullPendingChain(t *testing.T) {
	f := newServiceFixture(t, twoLevelRules(), twoLevelJerarquias())

	solicitud, chain, err := f.service.Submit(context.Background(), vacationSubmit())
	require.NoError(t, err)

	assert.Equal(t, models.SolicitudPendiente, solicitud.Estado)
	require.Len(t, chain, 2)
	assert.Equal(t, "JEFE1", chain[0].CodigoTrabajadorAprueba)
	assert.Equal(t, "GER1", chain[1].CodigoTrabajadorAprueba)
	for _, a := range chain {
		assert.Equal(t, models.AprobacionPendiente, a.Estado)
		assert.Equal(t, solicitud.ID, a.IDSolicitud)
	}

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, 1, f.notifier.sent[0].nivel)
	assert.Equal(t, []int64{1}, f.aprobaciones.notificados)
}

func TestSubmitNoMatchingConfigPersistsNothing(t *testing.T) {
	f := newServiceFixture(t, nil, twoLevelJerarquias())

	_, _, err := f.service.Submit(context.Background(), vacationSubmit())
	require.ErrorIs(t, err, engine.ErrNoMatchingConfig)

	assert.Empty(t, f.solicitudes.created)
	assert.Zero(t, f.tx.calls)
}

func TestSubmitIncompleteChainPersistsNothing(t *testing.T) {
	// Level 2 required but only level 1 is configured.
	f := newServiceFixture(t, twoLevelRules(), twoLevelJerarquias()[:1])

	_, _, err := f.service.Submit(context.Background(), vacationSubmit())

	var incomplete *engine.IncompleteChainError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 2, incomplete.Nivel)
	assert.Empty(t, f.solicitudes.created)
	assert.Zero(t, f.tx.calls)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"unknown tipo", func(i *SubmitInput) { i.TipoSolicitud = "X" }},
		{"permiso without codigo", func(i *SubmitInput) {
			i.TipoSolicitud = models.TipoPermiso
			i.CodigoPermiso = ""
		}},
		{"vacaciones with codigo", func(i *SubmitInput) { i.CodigoPermiso = "PM01" }},
		{"missing trabajador", func(i *SubmitInput) { i.CodigoTrabajador = "" }},
		{"inverted range", func(i *SubmitInput) { i.FechaFin = i.FechaInicio.AddDate(0, 0, -1) }},
		{"zero dias", func(i *SubmitInput) { i.DiasSolicitados = 0 }},
		{"negative dias", func(i *SubmitInput) { i.DiasSolicitados = -2 }},
		{"missing fecha", func(i *SubmitInput) { i.Fecha = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t, twoLevelRules(), twoLevelJerarquias())
			input := vacationSubmit()
			tt.mutate(&input)

			_, _, err := f.service.Submit(context.Background(), input)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			assert.Empty(t, f.solicitudes.created)
		})
	}
}

func pendingSolicitud(id int64) *models.Solicitud {
	return &models.Solicitud{
		ID:               id,
		TipoSolicitud:    models.TipoVacaciones,
		CodigoTrabajador: "T100",
		Estado:           models.SolicitudPendiente,
	}
}

func pendingChain(idSolicitud int64) []*models.Aprobacion {
	return []*models.Aprobacion{
		{ID: 1, IDSolicitud: idSolicitud, Nivel: 1, CodigoTrabajadorAprueba: "JEFE1", Estado: models.AprobacionPendiente},
		{ID: 2, IDSolicitud: idSolicitud, Nivel: 2, CodigoTrabajadorAprueba: "GER1", Estado: models.AprobacionPendiente},
	}
}

func decideFixture(t *testing.T, solicitud *models.Solicitud, chain []*models.Aprobacion) *serviceFixture {
	t.Helper()
	f := newServiceFixture(t, twoLevelRules(), twoLevelJerarquias())
	f.solicitudes.getByIDTxFn = func(ctx context.Context, tx *sql.Tx, id int64) (*models.Solicitud, error) {
		if solicitud != nil && id == solicitud.ID {
			copied := *solicitud
			return &copied, nil
		}
		return nil, nil
	}
	if solicitud != nil {
		f.aprobaciones.chains[solicitud.ID] = chain
	}
	return f
}

func TestDecideSequentialApproval(t *testing.T) {
	f := decideFixture(t, pendingSolicitud(7), pendingChain(7))

	// Level 1 approves: solicitud stays Pendiente, level 2 is notified.
	result, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionAprobada, Usuario: "JEFE1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SolicitudPendiente, result.Estado)
	assert.Empty(t, f.solicitudes.estadoMoves)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, 2, f.notifier.sent[0].nivel)

	// Level 2 approves: solicitud becomes Aprobada.
	result, err = f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionAprobada, Usuario: "GER1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SolicitudAprobada, result.Estado)
	assert.Equal(t, []string{"P->A"}, f.solicitudes.estadoMoves)
	assert.Len(t, f.notifier.sent, 1)
}

func TestDecideRejectionIsTerminal(t *testing.T) {
	chain := pendingChain(7)
	f := decideFixture(t, pendingSolicitud(7), chain)

	result, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionRechazada,
		Observacion: "fechas no disponibles", Usuario: "JEFE1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.SolicitudRechazada, result.Estado)
	assert.Equal(t, []string{"P->R"}, f.solicitudes.estadoMoves)
	// Later levels stay untouched and nobody else is notified.
	assert.Equal(t, models.AprobacionPendiente, chain[1].Estado)
	assert.Empty(t, f.notifier.sent)
}

func TestDecideOutOfOrderApproverRejected(t *testing.T) {
	f := decideFixture(t, pendingSolicitud(7), pendingChain(7))

	// Level 2's approver acts while level 1 is still pending.
	_, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionAprobada, Usuario: "GER1",
	})
	require.ErrorIs(t, err, ErrNoAutorizado)
	assert.Empty(t, f.aprobaciones.decided)
}

func TestDecideUnknownUserRejected(t *testing.T) {
	f := decideFixture(t, pendingSolicitud(7), pendingChain(7))

	_, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionAprobada, Usuario: "INTRUSO",
	})
	require.ErrorIs(t, err, ErrNoAutorizado)
}

func TestDecideOnTerminalSolicitud(t *testing.T) {
	solicitud := pendingSolicitud(7)
	solicitud.Estado = models.SolicitudRechazada
	f := decideFixture(t, solicitud, pendingChain(7))

	_, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionAprobada, Usuario: "GER1",
	})
	require.ErrorIs(t, err, flow.ErrInvalidTransition)
}

func TestDecideNotFound(t *testing.T) {
	f := decideFixture(t, nil, nil)

	_, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 99, Decision: models.AprobacionAprobada, Usuario: "JEFE1",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDecideInvalidDecision(t *testing.T) {
	f := decideFixture(t, pendingSolicitud(7), pendingChain(7))

	_, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: "P", Usuario: "JEFE1",
	})
	assert.True(t, IsValidation(err))
}

func TestDecideLostRaceSurfacesInvalidTransition(t *testing.T) {
	f := decideFixture(t, pendingSolicitud(7), pendingChain(7))
	f.aprobaciones.decideResult = false

	_, err := f.service.Decide(context.Background(), DecideInput{
		IDSolicitud: 7, Decision: models.AprobacionAprobada, Usuario: "JEFE1",
	})
	require.ErrorIs(t, err, flow.ErrInvalidTransition)
}

func TestAnularFromEachState(t *testing.T) {
	for _, estado := range []models.EstadoSolicitud{
		models.SolicitudPendiente, models.SolicitudAprobada, models.SolicitudRechazada,
	} {
		t.Run(string(estado), func(t *testing.T) {
			solicitud := pendingSolicitud(3)
			solicitud.Estado = estado
			f := decideFixture(t, solicitud, pendingChain(3))

			result, err := f.service.Anular(context.Background(), 3, "registrada por error", "T100")
			require.NoError(t, err)
			assert.Equal(t, models.SolicitudAnulada, result.Estado)
			require.NotNil(t, result.MotivoAnulacion)
			assert.Equal(t, "registrada por error", *result.MotivoAnulacion)
		})
	}
}

func TestAnularRequiresMotivo(t *testing.T) {
	f := decideFixture(t, pendingSolicitud(3), pendingChain(3))

	_, err := f.service.Anular(context.Background(), 3, "", "T100")
	assert.True(t, IsValidation(err))
	assert.Zero(t, f.solicitudes.anularCalls)
}

func TestAnularTwiceFails(t *testing.T) {
	solicitud := pendingSolicitud(3)
	solicitud.Estado = models.SolicitudAnulada
	f := decideFixture(t, solicitud, pendingChain(3))

	_, err := f.service.Anular(context.Background(), 3, "otra vez", "T100")
	require.ErrorIs(t, err, flow.ErrInvalidTransition)
	assert.Zero(t, f.solicitudes.anularCalls)
}

func TestNotifierFailureDoesNotFailSubmit(t *testing.T) {
	f := newServiceFixture(t, twoLevelRules(), twoLevelJerarquias())
	f.notifier.err = errors.New("smtp unreachable")

	_, chain, err := f.service.Submit(context.Background(), vacationSubmit())
	require.NoError(t, err)
	assert.Len(t, chain, 2)
	assert.Empty(t, f.aprobaciones.notificados)
}

func TestLockForIsStableAndBounded(t *testing.T) {
	f := newServiceFixture(t, twoLevelRules(), twoLevelJerarquias())

	// Same id always maps to the same mutex.
	assert.Same(t, f.service.lockFor(42), f.service.lockFor(42))

	// Many ids reuse a fixed set of mutexes instead of allocating per id.
	distinct := make(map[*sync.Mutex]struct{})
	for id := int64(0); id < 1024; id++ {
		distinct[f.service.lockFor(id)] = struct{}{}
	}
	assert.LessOrEqual(t, len(distinct), lockShards)
}
