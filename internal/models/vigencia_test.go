package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestConfigFlujoVigenteEnInclusiveWindow(t *testing.T) {
	c := &ConfigFlujo{
		Activo:     ActivoSi,
		FechaDesde: at(2024, time.June, 1, 0, 0),
		FechaHasta: datePtr(at(2024, time.June, 30, 0, 0)),
	}

	tests := []struct {
		name  string
		fecha time.Time
		want  bool
	}{
		{"midday on first day", at(2024, time.June, 1, 10, 30), true},
		{"afternoon on last day", at(2024, time.June, 30, 15, 0), true},
		{"end of last day", at(2024, time.June, 30, 23, 59), true},
		{"start of day after", at(2024, time.July, 1, 0, 0), false},
		{"evening before first day", at(2024, time.May, 31, 23, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.VigenteEn(tt.fecha))
		})
	}
}

func TestConfigFlujoVigenteEnOpenEnded(t *testing.T) {
	c := &ConfigFlujo{
		Activo:     ActivoSi,
		FechaDesde: at(2024, time.June, 1, 0, 0),
	}

	assert.True(t, c.VigenteEn(at(2030, time.January, 15, 18, 45)))
}

func TestConfigFlujoVigenteEnInactive(t *testing.T) {
	c := &ConfigFlujo{
		Activo:     ActivoNo,
		FechaDesde: at(2024, time.June, 1, 0, 0),
	}

	assert.False(t, c.VigenteEn(at(2024, time.June, 15, 12, 0)))
}

func TestJerarquiaVigenteEnInclusiveWindow(t *testing.T) {
	j := &Jerarquia{
		Activo:     ActivoSi,
		FechaDesde: at(2024, time.June, 1, 0, 0),
		FechaHasta: datePtr(at(2024, time.June, 30, 0, 0)),
	}

	assert.True(t, j.VigenteEn(at(2024, time.June, 1, 9, 15)))
	assert.True(t, j.VigenteEn(at(2024, time.June, 30, 16, 40)))
	assert.False(t, j.VigenteEn(at(2024, time.July, 1, 8, 0)))
}

func TestSustitutoVigenteEnCoversWholeLastDay(t *testing.T) {
	s := &Sustituto{
		Activo:     ActivoSi,
		FechaDesde: at(2024, time.June, 10, 0, 0),
		FechaHasta: at(2024, time.June, 15, 0, 0),
	}

	assert.True(t, s.VigenteEn(at(2024, time.June, 15, 10, 30)))
	assert.True(t, s.VigenteEn(at(2024, time.June, 10, 23, 59)))
	assert.False(t, s.VigenteEn(at(2024, time.June, 16, 0, 1)))
	assert.False(t, s.VigenteEn(at(2024, time.June, 9, 22, 0)))
}
