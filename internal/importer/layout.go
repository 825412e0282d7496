package importer

import "github.com/moneydairy/moneydairy/internal/model"

// Layout describes where one bank puts its balance, period and movement table.
type Layout struct {
	Bank           string
	Description    string
	Columns        model.ColumnMap
	BalanceMarkers []string
	PeriodFrom     []string
	PeriodTo       []string
}

// HeaderMarkers returns the alias groups a header row must satisfy: one
// date column, one description column and at least one amount column.
func (l Layout) HeaderMarkers() [][]string {
	return [][]string{l.Columns.Date, l.Columns.Description, l.Columns.AmountLabels()}
}

// WithColumns returns a copy of l with extra column aliases appended.
func (l Layout) WithColumns(extra model.ColumnMap) Layout {
	l.Columns = l.Columns.Merge(extra)
	return l
}

var periodFrom = []string{"desde", "fecha desde", "periodo desde"}
var periodTo = []string{"hasta", "fecha hasta", "periodo hasta"}

// DefaultLayouts returns the built-in Chilean bank layouts.
func DefaultLayouts() []Layout {
	return []Layout{
		{
			Bank:        "bancochile",
			Description: "Banco de Chile - Cartola cuenta corriente",
			Columns: model.ColumnMap{
				Date:        []string{"fecha"},
				Description: []string{"descripcion", "detalle"},
				Charge:      []string{"cargos", "cargo", "cargos (clp)"},
				Deposit:     []string{"abonos", "abono", "abonos (clp)"},
				OperationID: []string{"n° documento", "documento"},
				Sign:        model.SignSplit,
			},
			BalanceMarkers: []string{"saldo disponible"},
			PeriodFrom:     periodFrom,
			PeriodTo:       periodTo,
		},
		{
			Bank:        "bancoestado",
			Description: "BancoEstado - Cuenta RUT / cuenta corriente",
			Columns: model.ColumnMap{
				Date:        []string{"fecha"},
				Description: []string{"descripcion", "detalle"},
				Amount:      []string{"monto", "cargo", "cargo/abono", "cargo / abono"},
				OperationID: []string{"n° operacion", "nº operacion", "numero operacion", "n operacion"},
				Sign:        model.SignAsReported,
			},
			BalanceMarkers: []string{"saldo contable"},
			PeriodFrom:     periodFrom,
			PeriodTo:       periodTo,
		},
		{
			Bank:        "santander",
			Description: "Santander Chile - Movimientos cuenta corriente",
			Columns: model.ColumnMap{
				Date:        []string{"fecha", "fecha transaccion", "fecha operacion"},
				Description: []string{"detalle", "descripcion", "glosa"},
				Charge:      []string{"cargo", "cargos", "monto cargo", "debito", "debitos"},
				Deposit:     []string{"abono", "abonos", "monto abono", "deposito", "credito", "creditos"},
				OperationID: []string{"n° documento", "documento"},
				Sign:        model.SignSplit,
			},
			BalanceMarkers: []string{"saldo disponible"},
			PeriodFrom:     periodFrom,
			PeriodTo:       periodTo,
		},
		{
			// BCI exports charges as positive numbers and carries no balance.
			Bank:        "bci",
			Description: "BCI - Cartola de movimientos",
			Columns: model.ColumnMap{
				Date:        []string{"fecha", "fecha transaccion"},
				Description: []string{"descripcion", "detalle"},
				Amount:      []string{"monto", "cargo", "debito"},
				Sign:        model.SignInverted,
			},
		},
	}
}
