package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("user not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *User) (*User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `INSERT INTO users (name, email, password, role, status)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query, u.Name, u.Email, u.Password, u.Role, StatusPending).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	u.Status = StatusPending

	if u.Role == RoleDriver && u.Truck != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO trucks (user_id, driver_license, license_plate, model, current_status)
			 VALUES ($1, $2, $3, $4, $5)`,
			u.ID, u.Truck.DriverLicense, u.Truck.LicensePlate, u.Truck.Model, TruckIdle)
		if err != nil {
			return nil, fmt.Errorf("insert truck: %w", err)
		}
		u.Truck.CurrentStatus = TruckIdle
	}

	if u.Role == RoleSender && u.Org != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO organizations (user_id, name, reg_number, headquarters)
			 VALUES ($1, $2, $3, $4)`,
			u.ID, u.Org.Name, u.Org.RegNumber, u.Org.Headquarters)
		if err != nil {
			return nil, fmt.Errorf("insert organization: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT id, name, email, password, role, status, created_at
	          FROM users WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.attachDetails(ctx, u)
}

func (r *Repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	query := `SELECT id, name, email, password, role, status, created_at
	          FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.attachDetails(ctx, u)
}

func (r *Repository) ListUsers(ctx context.Context) ([]*User, error) {
	query := `SELECT u.id, u.name, u.email, u.role, u.status, u.created_at,
	                 t.driver_license, t.license_plate, t.model, t.current_status,
	                 o.name, o.reg_number, o.headquarters
	          FROM users u
	          LEFT JOIN trucks t ON t.user_id = u.id
	          LEFT JOIN organizations o ON o.user_id = u.id
	          ORDER BY u.created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var license, plate, model, truckStatus sql.NullString
		var orgName, regNum, hq sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt,
			&license, &plate, &model, &truckStatus,
			&orgName, &regNum, &hq); err != nil {
			return nil, err
		}
		if truckStatus.Valid {
			u.Truck = &TruckDetails{
				DriverLicense: license.String,
				LicensePlate:  plate.String,
				Model:         model.String,
				CurrentStatus: truckStatus.String,
			}
		}
		if orgName.Valid {
			u.Org = &OrganizationDetails{
				Name:         orgName.String,
				RegNumber:    regNum.String,
				Headquarters: hq.String,
			}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdateTruckStatus(ctx context.Context, userID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trucks SET current_status = $1 WHERE user_id = $2`, status, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetTruckStatus(ctx context.Context, userID int) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx,
		`SELECT current_status FROM trucks WHERE user_id = $1`, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *Repository) attachDetails(ctx context.Context, u *User) (*User, error) {
	switch u.Role {
	case RoleDriver:
		t := &TruckDetails{}
		err := r.db.QueryRowContext(ctx,
			`SELECT driver_license, license_plate, model, current_status
			 FROM trucks WHERE user_id = $1`, u.ID).
			Scan(&t.DriverLicense, &t.LicensePlate, &t.Model, &t.CurrentStatus)
		if err == nil {
			u.Truck = t
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	case RoleSender:
		o := &OrganizationDetails{}
		err := r.db.QueryRowContext(ctx,
			`SELECT name, reg_number, headquarters
			 FROM organizations WHERE user_id = $1`, u.ID).
			Scan(&o.Name, &o.RegNumber, &o.Headquarters)
		if err == nil {
			u.Org = o
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return u, nil
}
