package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/pos-gateway/gateway/models"
)

// EquipmentStore is the read-only registry of POS terminals. Lookups only
// ever see records that are both active and authorized.
type EquipmentStore interface {
	FindByMAC(ctx context.Context, mac string) (*models.Equipment, error)
	FindBySerial(ctx context.Context, serial string) (*models.Equipment, error)
	FindByID(ctx context.Context, id int64) (*models.Equipment, error)
	CountAuthorized(ctx context.Context, mac string) (int, error)
	Ping(ctx context.Context) error
}

const equipmentColumns = `id, empresas_id, serial_equipo, mac, ip, port, token, password, autorizado, estado`

// Repository implements EquipmentStore against Postgres, or in memory when
// constructed without a database (tests only).
type Repository struct {
	Equipments []*models.Equipment

	mu sync.RWMutex
	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{Equipments: make([]*models.Equipment, 0)}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByMAC(ctx context.Context, mac string) (*models.Equipment, error) {
	if r.db == nil {
		return r.findMem(func(e *models.Equipment) bool { return e.MAC == mac })
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+equipmentColumns+`
		FROM public.equipos
		WHERE mac = $1 AND estado = '1' AND autorizado = '1'
		LIMIT 1
	`, mac)
	return scanEquipment(row, "mac")
}

func (r *Repository) FindBySerial(ctx context.Context, serial string) (*models.Equipment, error) {
	if r.db == nil {
		return r.findMem(func(e *models.Equipment) bool { return e.Serial == serial })
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+equipmentColumns+`
		FROM public.equipos
		WHERE serial_equipo = $1 AND estado = '1' AND autorizado = '1'
		LIMIT 1
	`, serial)
	return scanEquipment(row, "serial")
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Equipment, error) {
	if r.db == nil {
		return r.findMem(func(e *models.Equipment) bool { return e.ID == id })
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+equipmentColumns+`
		FROM public.equipos
		WHERE id = $1 AND estado = '1' AND autorizado = '1'
		LIMIT 1
	`, id)
	return scanEquipment(row, "id")
}

// CountAuthorized counts active, authorized terminals matching mac. The
// authorization gate treats count > 0 as authorized.
func (r *Repository) CountAuthorized(ctx context.Context, mac string) (int, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		count := 0
		for _, e := range r.Equipments {
			if e.MAC == mac && e.Active && e.Authorized {
				count++
			}
		}
		return count, nil
	}
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM public.equipos
		WHERE mac = $1 AND estado = '1' AND autorizado = '1'
	`, mac).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting authorized equipment: %w", err)
	}
	return count, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func (r *Repository) findMem(match func(*models.Equipment) bool) (*models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.Equipments {
		if match(e) && e.Active && e.Authorized {
			found := *e
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func scanEquipment(row *sql.Row, key string) (*models.Equipment, error) {
	var (
		e                  models.Equipment
		authorized, active string
	)
	err := row.Scan(&e.ID, &e.CompanyID, &e.Serial, &e.MAC, &e.IP, &e.Port,
		&e.Token, &e.Password, &authorized, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding equipment by %s: %w", key, err)
	}
	// The store keeps the flags as '0'/'1' strings; the string form never
	// leaves this package.
	e.Authorized = authorized == "1"
	e.Active = active == "1"
	return &e, nil
}
