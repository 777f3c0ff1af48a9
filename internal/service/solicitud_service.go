package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dquispe/vacaciones-engine/internal/domain/flow"
	"github.com/dquispe/vacaciones-engine/internal/engine"
	"github.com/dquispe/vacaciones-engine/internal/models"
)

// SolicitudStore is the slice of the solicitud repository the service
// consumes.
type SolicitudStore interface {
	Create(ctx context.Context, tx *sql.Tx, s *models.Solicitud) error
	GetByID(ctx context.Context, id int64) (*models.Solicitud, error)
	GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Solicitud, error)
	UpdateEstado(ctx context.Context, tx *sql.Tx, id int64, from, to models.EstadoSolicitud, usuario string) (bool, error)
	Anular(ctx context.Context, tx *sql.Tx, id int64, motivo, usuario string) (bool, error)
	List(ctx context.Context, f models.SolicitudFilters) ([]*models.Solicitud, int, error)
}

// AprobacionStore is the slice of the aprobacion repository the service
// consumes.
type AprobacionStore interface {
	CreateChain(ctx context.Context, tx *sql.Tx, aprobaciones []*models.Aprobacion) error
	GetBySolicitud(ctx context.Context, idSolicitud int64) ([]*models.Aprobacion, error)
	GetBySolicitudTx(ctx context.Context, tx *sql.Tx, idSolicitud int64) ([]*models.Aprobacion, error)
	Decide(ctx context.Context, tx *sql.Tx, id int64, estado models.EstadoAprobacion, observacion, usuario, ip string) (bool, error)
	MarkNotificado(ctx context.Context, id int64) error
	ListPendientesPorAprobador(ctx context.Context, aprobador string) ([]*models.Aprobacion, error)
}

// TransactionManager runs a function within a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

// Notifier alerts an approver that a level is waiting on them. Best-effort:
// failures are logged, never surfaced to the transition.
type Notifier interface {
	NotifyApprover(ctx context.Context, solicitud *models.Solicitud, aprobacion *models.Aprobacion) error
}

// CatalogLookup enriches responses with descriptive names. Purely cosmetic;
// lookups failing must never fail an operation.
type CatalogLookup interface {
	GetTrabajador(ctx context.Context, codigo string) (*models.Trabajador, error)
	GetArea(ctx context.Context, codigo string) (*models.CatalogItem, error)
	GetSeccion(ctx context.Context, codigo string) (*models.CatalogItem, error)
	GetCargo(ctx context.Context, codigo string) (*models.CatalogItem, error)
}

// SubmitInput carries a new request. The organizational scope comes from the
// caller's session (worker master data), not from the catalog lookup.
type SubmitInput struct {
	TipoSolicitud    models.TipoSolicitud
	CodigoPermiso    string
	CodigoTrabajador string
	Scope            models.OrgScope
	FechaInicio      time.Time
	FechaFin         time.Time
	DiasSolicitados  float64
	Observacion      string
	Motivo           string
	Usuario          string
	Fecha            time.Time // submission date driving rule/hierarchy validity
}

// DecideInput carries one level decision.
type DecideInput struct {
	IDSolicitud int64
	Decision    models.EstadoAprobacion // AprobacionAprobada or AprobacionRechazada
	Observacion string
	Usuario     string // acting worker code; must be the active level's approver
	IP          string
}

// SolicitudService drives the request lifecycle: submission (matching +
// chain resolution + persistence), sequential level decisions, and the
// anulación side channel.
type SolicitudService struct {
	solicitudes  SolicitudStore
	aprobaciones AprobacionStore
	routing      *RoutingService
	tx           TransactionManager
	notifier     Notifier
	catalog      CatalogLookup
	logger       Logger

	// Sharded locks serialize decide/anular per solicitud. Fixed size: two
	// ids may share a shard, which only over-serializes, never under.
	locks [lockShards]sync.Mutex
}

const lockShards = 64

// NewSolicitudService creates a new SolicitudService. notifier and catalog
// may be nil; both are optional enrichments.
func NewSolicitudService(
	solicitudes SolicitudStore,
	aprobaciones AprobacionStore,
	routing *RoutingService,
	tx TransactionManager,
	notifier Notifier,
	catalog CatalogLookup,
	logger Logger,
) *SolicitudService {
	return &SolicitudService{
		solicitudes:  solicitudes,
		aprobaciones: aprobaciones,
		routing:      routing,
		tx:           tx,
		notifier:     notifier,
		catalog:      catalog,
		logger:       logger,
	}
}

func (s *SolicitudService) lockFor(id int64) *sync.Mutex {
	return &s.locks[uint64(id)%lockShards]
}

// Submit validates the input, matches the governing rule, resolves the full
// approval chain, and persists the solicitud with all its Pendiente levels in
// one transaction. Nothing is persisted when matching or resolution fails.
func (s *SolicitudService) Submit(ctx context.Context, input SubmitInput) (*models.Solicitud, []*models.Aprobacion, error) {
	if err := validateSubmit(input); err != nil {
		return nil, nil, err
	}

	matched, err := s.routing.MatchConfig(ctx, engine.MatchInput{
		TipoSolicitud:   input.TipoSolicitud,
		CodigoPermiso:   input.CodigoPermiso,
		DiasSolicitados: input.DiasSolicitados,
		Scope:           input.Scope,
		Fecha:           input.Fecha,
	})
	if err != nil {
		return nil, nil, err
	}

	chain, err := s.routing.ResolveChain(ctx, input.Scope, input.Fecha, matched.NivelesRequeridos)
	if err != nil {
		return nil, nil, err
	}
	if len(chain) == 0 {
		return nil, nil, fmt.Errorf("config %d requires no approval levels: %w", matched.ID, engine.ErrNoMatchingConfig)
	}

	solicitud := &models.Solicitud{
		TipoSolicitud:    input.TipoSolicitud,
		CodigoTrabajador: input.CodigoTrabajador,
		FechaInicio:      input.FechaInicio,
		FechaFin:         input.FechaFin,
		DiasSolicitados:  input.DiasSolicitados,
		Estado:           models.SolicitudPendiente,
	}
	if input.TipoSolicitud == models.TipoPermiso {
		solicitud.CodigoPermiso = &input.CodigoPermiso
	}
	if input.Observacion != "" {
		solicitud.Observacion = &input.Observacion
	}
	if input.Motivo != "" {
		solicitud.Motivo = &input.Motivo
	}
	if input.Usuario != "" {
		solicitud.UsuarioRegistro = &input.Usuario
	}

	aprobaciones := make([]*models.Aprobacion, 0, len(chain))
	for _, resolved := range chain {
		aprobaciones = append(aprobaciones, &models.Aprobacion{
			Nivel:                   resolved.Nivel,
			CodigoTrabajadorAprueba: resolved.Aprueba,
			Estado:                  models.AprobacionPendiente,
		})
	}

	err = s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.solicitudes.Create(ctx, tx, solicitud); err != nil {
			return err
		}
		for _, a := range aprobaciones {
			a.IDSolicitud = solicitud.ID
		}
		return s.aprobaciones.CreateChain(ctx, tx, aprobaciones)
	})
	if err != nil {
		s.logger.Error("Failed to submit solicitud", "error", err, "trabajador", input.CodigoTrabajador)
		return nil, nil, err
	}

	s.logger.Info("Solicitud submitted",
		"id_solicitud", solicitud.ID,
		"tipo", string(input.TipoSolicitud),
		"niveles", len(aprobaciones),
		"id_config", matched.ID)

	s.notify(ctx, solicitud, aprobaciones[0])
	return solicitud, aprobaciones, nil
}

// Decide records the acting approver's decision on the active level of a
// Pendiente solicitud. The active level is the lowest Pendiente aprobacion;
// deciding any other level, an already-decided row, or a terminal solicitud
// fails with flow.ErrInvalidTransition.
func (s *SolicitudService) Decide(ctx context.Context, input DecideInput) (*models.Solicitud, error) {
	if input.Decision != models.AprobacionAprobada && input.Decision != models.AprobacionRechazada {
		return nil, invalidInput("decision", "must be 'A' or 'R'")
	}
	if input.Usuario == "" {
		return nil, invalidInput("usuario", "acting user is required")
	}

	lock := s.lockFor(input.IDSolicitud)
	lock.Lock()
	defer lock.Unlock()

	var solicitud *models.Solicitud
	var nextPending *models.Aprobacion

	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		solicitud, err = s.solicitudes.GetByIDTx(ctx, tx, input.IDSolicitud)
		if err != nil {
			return err
		}
		if solicitud == nil {
			return fmt.Errorf("solicitud %d: %w", input.IDSolicitud, ErrNotFound)
		}
		if solicitud.Estado != models.SolicitudPendiente {
			return fmt.Errorf("%w: solicitud %d is %s", flow.ErrInvalidTransition, solicitud.ID, solicitud.Estado)
		}

		chain, err := s.aprobaciones.GetBySolicitudTx(ctx, tx, input.IDSolicitud)
		if err != nil {
			return err
		}

		active := activeLevel(chain)
		if active == nil {
			return fmt.Errorf("%w: solicitud %d has no pending level", flow.ErrInvalidTransition, solicitud.ID)
		}
		if active.CodigoTrabajadorAprueba != input.Usuario {
			return fmt.Errorf("%w: level %d belongs to another approver", ErrNoAutorizado, active.Nivel)
		}

		machine := flow.NewSolicitudMachine(flow.State(solicitud.Estado))
		isLast := active.Nivel == len(chain)
		trigger := flow.TriggerAprobarNivel
		if input.Decision == models.AprobacionRechazada {
			trigger = flow.TriggerRechazar
		} else if isLast {
			trigger = flow.TriggerAprobarFinal
		}
		if err := machine.Fire(ctx, trigger); err != nil {
			return err
		}

		// Guarded update re-validates the row is still Pendiente at commit.
		ok, err := s.aprobaciones.Decide(ctx, tx, active.ID, input.Decision, input.Observacion, input.Usuario, input.IP)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: level %d already decided", flow.ErrInvalidTransition, active.Nivel)
		}

		newEstado := models.EstadoSolicitud(machine.State())
		if newEstado != solicitud.Estado {
			ok, err := s.solicitudes.UpdateEstado(ctx, tx, solicitud.ID, solicitud.Estado, newEstado, input.Usuario)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: solicitud %d moved concurrently", flow.ErrInvalidTransition, solicitud.ID)
			}
			solicitud.Estado = newEstado
		}

		if input.Decision == models.AprobacionAprobada && !isLast {
			for _, a := range chain {
				if a.Nivel == active.Nivel+1 {
					nextPending = a
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Nivel decided",
		"id_solicitud", input.IDSolicitud,
		"decision", string(input.Decision),
		"usuario", input.Usuario,
		"estado", string(solicitud.Estado))

	if nextPending != nil {
		s.notify(ctx, solicitud, nextPending)
	}
	return solicitud, nil
}

// Anular voids a solicitud from any non-annulled state given a mandatory
// reason. Terminal: nothing transitions out of Anulada.
func (s *SolicitudService) Anular(ctx context.Context, id int64, motivo, usuario string) (*models.Solicitud, error) {
	if motivo == "" {
		return nil, invalidInput("motivo_anulacion", "a reason is required")
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	var solicitud *models.Solicitud
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		solicitud, err = s.solicitudes.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if solicitud == nil {
			return fmt.Errorf("solicitud %d: %w", id, ErrNotFound)
		}

		machine := flow.NewSolicitudMachine(flow.State(solicitud.Estado))
		if err := machine.Fire(ctx, flow.TriggerAnular); err != nil {
			return err
		}

		ok, err := s.solicitudes.Anular(ctx, tx, id, motivo, usuario)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: solicitud %d already annulled", flow.ErrInvalidTransition, id)
		}

		solicitud.Estado = models.SolicitudAnulada
		solicitud.MotivoAnulacion = &motivo
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Solicitud annulled", "id_solicitud", id, "usuario", usuario)
	return solicitud, nil
}

// Get returns a solicitud with its chain, enriched with catalog names when
// the lookup is reachable.
func (s *SolicitudService) Get(ctx context.Context, id int64) (*models.SolicitudDetalle, error) {
	solicitud, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if solicitud == nil {
		return nil, fmt.Errorf("solicitud %d: %w", id, ErrNotFound)
	}

	chain, err := s.aprobaciones.GetBySolicitud(ctx, id)
	if err != nil {
		return nil, err
	}

	detalle := &models.SolicitudDetalle{Solicitud: *solicitud, Aprobaciones: chain}
	s.enrich(ctx, detalle)
	return detalle, nil
}

// List returns solicitudes matching the filters plus the total count.
func (s *SolicitudService) List(ctx context.Context, f models.SolicitudFilters) ([]*models.Solicitud, int, error) {
	return s.solicitudes.List(ctx, f)
}

// ListPendientes returns the levels currently waiting on one approver.
func (s *SolicitudService) ListPendientes(ctx context.Context, aprobador string) ([]*models.Aprobacion, error) {
	return s.aprobaciones.ListPendientesPorAprobador(ctx, aprobador)
}

// notify alerts the approver of a newly active level. Best-effort.
func (s *SolicitudService) notify(ctx context.Context, solicitud *models.Solicitud, aprobacion *models.Aprobacion) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyApprover(ctx, solicitud, aprobacion); err != nil {
		s.logger.Warn("Failed to notify approver",
			"id_solicitud", solicitud.ID,
			"nivel", aprobacion.Nivel,
			"error", err.Error())
		return
	}
	if err := s.aprobaciones.MarkNotificado(ctx, aprobacion.ID); err != nil {
		s.logger.Warn("Failed to stamp notification time", "id_aprobacion", aprobacion.ID, "error", err.Error())
	}
}

// enrich fills cosmetic names; lookup failures leave bare codes.
func (s *SolicitudService) enrich(ctx context.Context, d *models.SolicitudDetalle) {
	if s.catalog == nil {
		return
	}
	if t, err := s.catalog.GetTrabajador(ctx, d.CodigoTrabajador); err == nil && t != nil {
		d.TrabajadorNombre = t.NombreCompleto
		if t.CodigoArea != nil {
			if a, err := s.catalog.GetArea(ctx, *t.CodigoArea); err == nil && a != nil {
				d.TrabajadorArea = a.Descripcion
			}
		}
		if t.CodigoSeccion != nil {
			if sec, err := s.catalog.GetSeccion(ctx, *t.CodigoSeccion); err == nil && sec != nil {
				d.TrabajadorSeccion = sec.Descripcion
			}
		}
		if t.CodigoCargo != nil {
			if c, err := s.catalog.GetCargo(ctx, *t.CodigoCargo); err == nil && c != nil {
				d.TrabajadorCargo = c.Descripcion
			}
		}
	}
	for _, a := range d.Aprobaciones {
		if t, err := s.catalog.GetTrabajador(ctx, a.CodigoTrabajadorAprueba); err == nil && t != nil {
			a.AprobadorNombre = t.NombreCompleto
		}
	}
}

// activeLevel returns the lowest Pendiente aprobacion, or nil when all are
// decided.
func activeLevel(chain []*models.Aprobacion) *models.Aprobacion {
	var active *models.Aprobacion
	for _, a := range chain {
		if a.Estado != models.AprobacionPendiente {
			continue
		}
		if active == nil || a.Nivel < active.Nivel {
			active = a
		}
	}
	return active
}

func validateSubmit(input SubmitInput) error {
	if !input.TipoSolicitud.IsValid() {
		return invalidInput("tipo_solicitud", "must be 'V' or 'P'")
	}
	if input.TipoSolicitud == models.TipoPermiso && input.CodigoPermiso == "" {
		return invalidInput("codigo_permiso", "required for permiso requests")
	}
	if input.TipoSolicitud == models.TipoVacaciones && input.CodigoPermiso != "" {
		return invalidInput("codigo_permiso", "not allowed for vacaciones requests")
	}
	if input.CodigoTrabajador == "" {
		return invalidInput("codigo_trabajador", "is required")
	}
	if input.FechaInicio.IsZero() || input.FechaFin.IsZero() {
		return invalidInput("fecha_inicio", "date range is required")
	}
	if input.FechaFin.Before(input.FechaInicio) {
		return invalidInput("fecha_fin", "must not precede fecha_inicio")
	}
	if input.DiasSolicitados <= 0 {
		return invalidInput("dias_solicitados", "must be positive")
	}
	if input.Fecha.IsZero() {
		return invalidInput("fecha", "submission date is required")
	}
	return nil
}
