package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error for request logging: the surface message, the
// platform code, and every wrapped cause. Postgres driver failures expose
// their diagnostics so constraint violations are traceable from logs without
// loosening the response detail policy.
type ErrorDump struct {
	Message string   `json:"message"`
	Code    Code     `json:"code,omitempty"`
	Causes  []string `json:"causes,omitempty"`

	Postgres *PostgresDiag `json:"postgres,omitempty"`
}

// PostgresDiag is the driver-level detail of a Postgres failure, populated
// from either the pgx or the lib/pq error type.
type PostgresDiag struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{Message: err.Error()}

	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}

	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		d.Causes = append(d.Causes, fmt.Sprintf("%T: %v", cause, cause))
	}

	d.Postgres = postgresDiag(err)
	return d
}

func postgresDiag(err error) *PostgresDiag {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PostgresDiag{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PostgresDiag{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	return nil
}
