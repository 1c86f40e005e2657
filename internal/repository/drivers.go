package repository

import (
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
)

const driverColumns = `id, name, email, phone, vehicle_id, qr_code, qr_code_image, created_at, updated_at, version`

func driverDst(d *domain.Driver) []any {
	return []any{&d.ID, &d.Name, &d.Email, &d.Phone, &d.VehicleID, &d.QRCode, &d.QRCodeImage, &d.CreatedAt, &d.UpdatedAt, &d.Version}
}

func (r *Repository) CreateDriver(driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, email, phone, vehicle_id, qr_code, qr_code_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{driver.ID, driver.Name, driver.Email, driver.Phone, driver.VehicleID, driver.QRCode, driver.QRCodeImage}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&driver.CreatedAt, &driver.UpdatedAt, &driver.Version)
}

func (r *Repository) GetDriverByID(id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	driver := &domain.Driver{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(driverDst(driver)...); err != nil {
		return nil, err
	}

	return driver, nil
}

func (r *Repository) GetAllDrivers() ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0)
	for rows.Next() {
		driver := &domain.Driver{}
		if err := rows.Scan(driverDst(driver)...); err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}

// GetDriversByIDs 批量获取司机，返回 id -> driver
func (r *Repository) GetDriversByIDs(ids []string) (map[string]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = ANY($1)`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make(map[string]*domain.Driver, len(ids))
	for rows.Next() {
		driver := &domain.Driver{}
		if err := rows.Scan(driverDst(driver)...); err != nil {
			return nil, err
		}
		drivers[driver.ID] = driver
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}
