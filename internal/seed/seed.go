package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/repository"
)

const entryTimeLayout = "2006-01-02 15:04"

// CSV 中必须包含的列，采样值之间用分号分隔
var requiredHeaders = []string{"driver_id", "entry_time", "trip_hours", "congestion", "speed"}

func splitSamples[T any](value string, parse func(string) (T, error)) ([]T, error) {
	samples := make([]T, 0)
	for _, field := range strings.Split(value, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := parse(field)
		if err != nil {
			return nil, err
		}
		samples = append(samples, v)
	}
	return samples, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

/**
 * ParseTripsCSV 读取历史行程数据
 * 表头必须包含 driver_id, entry_time, trip_hours, congestion, speed，可以额外包含 status
 * entry_time 的格式为 2006-01-02 15:04，按 loc 解析
 * 某一行无法解析时返回错误并指出行号
 */
func ParseTripsCSV(r io.Reader, loc *time.Location) ([]*domain.Trip, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, header := range headers {
		index[strings.TrimSpace(header)] = i
	}
	for _, header := range requiredHeaders {
		if _, ok := index[header]; !ok {
			return nil, fmt.Errorf("缺少列 %s", header)
		}
	}

	trips := make([]*domain.Trip, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("第 %d 行读取失败: %w", line, err)
		}

		trip := &domain.Trip{
			DriverID:  row[index["driver_id"]],
			Status:    domain.TripStatusCompleted,
			Locations: []float64{},
		}

		if trip.EntryTime, err = time.ParseInLocation(entryTimeLayout, row[index["entry_time"]], loc); err != nil {
			return nil, fmt.Errorf("第 %d 行入园时间格式错误: %w", line, err)
		}
		if trip.TripHours, err = strconv.ParseFloat(row[index["trip_hours"]], 64); err != nil {
			return nil, fmt.Errorf("第 %d 行行程时长格式错误: %w", line, err)
		}
		if trip.Congestion, err = splitSamples(row[index["congestion"]], strconv.Atoi); err != nil {
			return nil, fmt.Errorf("第 %d 行拥堵采样格式错误: %w", line, err)
		}
		if trip.Speed, err = splitSamples(row[index["speed"]], parseFloat); err != nil {
			return nil, fmt.Errorf("第 %d 行车速采样格式错误: %w", line, err)
		}

		if i, ok := index["status"]; ok && row[i] != "" {
			status := domain.TripStatus(row[i])
			if !slices.Contains([]domain.TripStatus{domain.TripStatusPending, domain.TripStatusOngoing, domain.TripStatusCompleted}, status) {
				return nil, fmt.Errorf("第 %d 行状态 %s 不合法", line, row[i])
			}
			trip.Status = status
		}

		if trip.Status == domain.TripStatusCompleted {
			endTime := trip.EntryTime.Add(time.Duration(trip.TripHours * float64(time.Hour)))
			trip.EndTime = &endTime
		}

		trips = append(trips, trip)
	}

	return trips, nil
}

// SeedTripsFromCSV 导入历史行程，司机必须已经登记
func SeedTripsFromCSV(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	trips, err := ParseTripsCSV(file, time.Local)
	if err != nil {
		slog.Error("解析行程数据失败", "error", err)
		return
	}

	driverIDs := make([]string, 0, len(trips))
	for _, trip := range trips {
		driverIDs = append(driverIDs, trip.DriverID)
	}
	drivers, err := r.GetDriversByIDs(driverIDs)
	if err != nil {
		slog.Error("获取司机失败", "error", err)
		return
	}

	valid := make([]*domain.Trip, 0, len(trips))
	for _, trip := range trips {
		driver, ok := drivers[trip.DriverID]
		if !ok {
			slog.Warn("司机不存在，跳过该行程", "driverID", trip.DriverID, "entryTime", trip.EntryTime)
			continue
		}
		trip.VehicleID = driver.VehicleID
		valid = append(valid, trip)
	}

	if err := r.InsertTrips(valid); err != nil {
		slog.Error("插入行程失败", "error", err)
		return
	}

	slog.Info("插入数据完成", "count", len(valid), "skipped", len(trips)-len(valid))
}
