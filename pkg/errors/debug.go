package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-only view of a failure chain.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

type pgDiagnostics struct {
	code, constraint, table, column, detail, message string
}

// Serialization failures, deadlocks and lost connections clear on retry.
func (d pgDiagnostics) transient() bool {
	switch d.code {
	case "40001", "40P01":
		return true
	}
	return strings.HasPrefix(d.code, "08")
}

// SerializationFailure reports a postgres 40001 or 40P01 anywhere in the
// chain. The whole transaction can be replayed after either.
func SerializationFailure(err error) bool {
	diag, ok := postgresDiagnostics(err)
	return ok && (diag.code == "40001" || diag.code == "40P01")
}

// postgresDiagnostics reads the server error from either driver in the chain.
func postgresDiagnostics(err error) (pgDiagnostics, bool) {
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return pgDiagnostics{
			code:       pgxErr.Code,
			constraint: pgxErr.ConstraintName,
			table:      pgxErr.TableName,
			column:     pgxErr.ColumnName,
			detail:     pgxErr.Detail,
			message:    pgxErr.Message,
		}, true
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return pgDiagnostics{
			code:       string(pqErr.Code),
			constraint: pqErr.Constraint,
			table:      pqErr.Table,
			column:     pqErr.Column,
			detail:     pqErr.Detail,
			message:    pqErr.Message,
		}, true
	}
	return pgDiagnostics{}, false
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error(), Retryable: Retryable(err)}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if diag, ok := postgresDiagnostics(err); ok {
		d.PGCode = diag.code
		d.PGConstraint = diag.constraint
		d.PGTable = diag.table
		d.PGColumn = diag.column
		d.PGDetail = diag.detail
		d.PGMessage = diag.message
	}
	return d
}
