package performance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres implementation of StoreAPI.
type Store struct {
	DB *pgxpool.Pool
	q  querier
	tx pgx.Tx
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db, q: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(StoreAPI) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(&Store{DB: s.DB, q: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT id FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

const employeeColumns = `id, tenant_id, COALESCE(user_id::text, ''), COALESCE(manager_id::text, ''),
	first_name, last_name, email, department, position, status, hire_date`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var hire *time.Time
	if err := row.Scan(&e.ID, &e.TenantID, &e.UserID, &e.ManagerID, &e.FirstName, &e.LastName, &e.Email, &e.Department, &e.Position, &e.Status, &hire); err != nil {
		return Employee{}, err
	}
	e.HireDate = datePtr(hire)
	return e, nil
}

func (s *Store) ListActiveEmployees(ctx context.Context, tenantID string) ([]Employee, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE tenant_id = $1 AND status = $2
		ORDER BY last_name, first_name
	`, tenantID, EmployeeStatusActive)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Employee, error) { return scanEmployee(row) })
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, id string) (Employee, error) {
	e, err := scanEmployee(s.q.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	return e, notFound(err)
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var employeeID string
	err := s.q.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&employeeID)
	return employeeID, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

func dateArg(d *Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time
}

// valuesList renders "($1,$2,...),($n+1,...)" for a multi-row insert.
func valuesList(rows, cols int) string {
	var sb strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", n)
			n++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
