package models

import "time"

// Aprobacion is one level of a request's approval chain. All levels are
// created together at submission time with the resolved approver snapshotted;
// each row is decided at most once.
type Aprobacion struct {
	ID                      int64            `json:"id_aprobacion"`
	IDSolicitud             int64            `json:"id_solicitud"`
	Nivel                   int              `json:"nivel"`
	CodigoTrabajadorAprueba string           `json:"codigo_trabajador_aprueba"`
	Estado                  EstadoAprobacion `json:"estado"`
	Observacion             *string          `json:"observacion"`
	Fecha                   *time.Time       `json:"fecha"`
	Usuario                 *string          `json:"usuario"`
	IPDispositivo           *string          `json:"ip_dispositivo"`
	FechaNotificado         *time.Time       `json:"fecha_notificado"`
	AprobadorNombre         string           `json:"aprobador_nombre,omitempty"`
}
