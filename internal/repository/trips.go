package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
)

const tripColumns = `id, driver_id, vehicle_id, entry_time, trip_hours, congestion, speed, locations, status, end_time, created_at, version`

// 采样数据在数据库中以 jsonb 保存
type tripRow struct {
	trip       domain.Trip
	congestion []byte
	speed      []byte
	locations  []byte
	endTime    sql.NullTime
}

func (row *tripRow) dst() []any {
	t := &row.trip
	return []any{&t.ID, &t.DriverID, &t.VehicleID, &t.EntryTime, &t.TripHours, &row.congestion, &row.speed, &row.locations, &t.Status, &row.endTime, &t.CreatedAt, &t.Version}
}

func (row *tripRow) decode() (*domain.Trip, error) {
	t := &row.trip
	t.Congestion = []int{}
	t.Speed = []float64{}
	t.Locations = []float64{}

	if err := json.Unmarshal(row.congestion, &t.Congestion); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row.speed, &t.Speed); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row.locations, &t.Locations); err != nil {
		return nil, err
	}
	if row.endTime.Valid {
		endTime := row.endTime.Time
		t.EndTime = &endTime
	}

	return t, nil
}

func encodeSamples(trip *domain.Trip) (string, string, string, error) {
	congestion, err := json.Marshal(nonNil(trip.Congestion))
	if err != nil {
		return "", "", "", err
	}
	speed, err := json.Marshal(nonNil(trip.Speed))
	if err != nil {
		return "", "", "", err
	}
	locations, err := json.Marshal(nonNil(trip.Locations))
	if err != nil {
		return "", "", "", err
	}
	return string(congestion), string(speed), string(locations), nil
}

// nil 切片会被编码成 null，这里统一成空数组
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *Repository) CreateTrip(trip *domain.Trip) error {
	congestion, speed, locations, err := encodeSamples(trip)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO trips (driver_id, vehicle_id, entry_time, trip_hours, congestion, speed, locations, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{trip.DriverID, trip.VehicleID, trip.EntryTime, trip.TripHours, congestion, speed, locations, trip.Status}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&trip.ID, &trip.CreatedAt, &trip.Version)
}

func (r *Repository) GetTripByID(id int64) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	row := &tripRow{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(row.dst()...); err != nil {
		return nil, err
	}

	return row.decode()
}

func (r *Repository) GetOngoingTripByDriverID(driverID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1 AND status = $2`

	ctx, cancel := r.queryContext()
	defer cancel()

	row := &tripRow{}
	if err := r.dbpool.QueryRowContext(ctx, query, driverID, domain.TripStatusOngoing).Scan(row.dst()...); err != nil {
		return nil, err
	}

	return row.decode()
}

// GetTrips 按状态过滤行程，status 为空时返回所有行程
// from 和 to 不为零值时只返回入园时间在 [from, to) 之间的行程
func (r *Repository) GetTrips(status domain.TripStatus, from, to time.Time) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + ` FROM trips
		WHERE ($1 = '' OR status = $1)
			AND ($2::timestamptz IS NULL OR entry_time >= $2)
			AND ($3::timestamptz IS NULL OR entry_time < $3)
		ORDER BY entry_time, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}

	rows, err := r.dbpool.QueryContext(ctx, query, string(status), fromArg, toArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]*domain.Trip, 0)
	for rows.Next() {
		row := &tripRow{}
		if err := rows.Scan(row.dst()...); err != nil {
			return nil, err
		}
		trip, err := row.decode()
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trips, nil
}

// UpdateTrip 更新行程的状态和采样数据，使用 version 做乐观锁
func (r *Repository) UpdateTrip(trip *domain.Trip) error {
	congestion, speed, locations, err := encodeSamples(trip)
	if err != nil {
		return err
	}

	query := `
		UPDATE trips
		SET
			trip_hours = $1,
			congestion = $2,
			speed = $3,
			locations = $4,
			status = $5,
			end_time = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{trip.TripHours, congestion, speed, locations, trip.Status, trip.EndTime, trip.ID, trip.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&trip.Version)
}

// InsertTrips 在一个事务中批量插入行程，用于导入数据
func (r *Repository) InsertTrips(trips []*domain.Trip) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO trips (driver_id, vehicle_id, entry_time, trip_hours, congestion, speed, locations, status, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	for _, trip := range trips {
		congestion, speed, locations, err := encodeSamples(trip)
		if err != nil {
			return err
		}

		args := []any{trip.DriverID, trip.VehicleID, trip.EntryTime, trip.TripHours, congestion, speed, locations, trip.Status, trip.EndTime}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&trip.ID, &trip.CreatedAt, &trip.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}
