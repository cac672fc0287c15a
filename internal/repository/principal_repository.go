package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/rinatiamaev/salesFactoryNew/internal/model"
	"github.com/rinatiamaev/salesFactoryNew/internal/utils"
)

const (
	qPrincipalInsert = `INSERT INTO principals (username, password_hash, role, table_number) VALUES (?, ?, ?, ?)`
	qPrincipalGet    = `SELECT username, password_hash, role, table_number FROM principals WHERE username = ? LIMIT 1`
)

// PrincipalRecord mirrors the 'principals' table.
type PrincipalRecord struct {
	Username     string
	PasswordHash string
	Role         string
	TableNumber  sql.NullInt64
}

// Principal converts the record into a validated model.Principal.
func (p PrincipalRecord) Principal() (model.Principal, error) {
	role, err := model.ParseRole(p.Role)
	if err != nil {
		return model.Principal{}, err
	}
	out := model.Principal{Username: p.Username, Role: role}
	if p.TableNumber.Valid {
		n := p.TableNumber.Int64
		out.TableNumber = &n
	}
	return out, out.Validate()
}

// PrincipalRepo stores login principals with bcrypt-hashed secrets.
type PrincipalRepo struct{ DB *sql.DB }

func NewPrincipalRepo(db *sql.DB) *PrincipalRepo { return &PrincipalRepo{DB: db} }

// Create hashes password and inserts the principal.  A duplicate username
// yields ErrConflict.
func (r *PrincipalRepo) Create(ctx context.Context, p model.Principal, password string, cost int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	var table sql.NullInt64
	if p.TableNumber != nil {
		table = sql.NullInt64{Int64: *p.TableNumber, Valid: true}
	}
	_, err = r.DB.ExecContext(ctx, qPrincipalInsert, strings.TrimSpace(p.Username), hash, string(p.Role), table)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrConflict
		}
		return err
	}
	return nil
}

// GetByUsername fetches a principal record by exact username.
func (r *PrincipalRepo) GetByUsername(ctx context.Context, username string) (PrincipalRecord, error) {
	var p PrincipalRecord
	err := r.DB.QueryRowContext(ctx, qPrincipalGet, strings.TrimSpace(username)).
		Scan(&p.Username, &p.PasswordHash, &p.Role, &p.TableNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PrincipalRecord{}, ErrPrincipalNotFound
		}
		return PrincipalRecord{}, err
	}
	return p, nil
}
