package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/safari-ops/entry-scheduler/backend/internal/config"
	"github.com/safari-ops/entry-scheduler/backend/internal/domain"
	"github.com/safari-ops/entry-scheduler/backend/internal/repository"
	"github.com/safari-ops/entry-scheduler/backend/internal/seed"
	"github.com/safari-ops/entry-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var date string
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机司机, 3: 为所有司机插入随机行程, 4: 从 CSV 导入行程)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量，op 为 3 时表示每位司机的行程数")
	flag.StringVar(&date, "date", time.Now().Format("2006-01-02"), "随机行程的日期")
	flag.StringVar(&file, "file", "./internal/seed/data/trips.csv", "要导入的 CSV 文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 本地开发时从 .env 读取环境变量，文件不存在时忽略
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 并不会立即连接数据库，需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if n <= 0 {
			logger.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for range n {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				logger.Error("无法生成随机用户", "error", err)
				continue
			}
			if err := repo.CreateUser(user); err != nil {
				logger.Error("无法插入用户", "error", err)
				continue
			}
			cnt++
		}

		logger.Info("插入用户成功", "count", cnt)
	case 2:
		if n <= 0 {
			logger.Error("请输入合法的司机数量")
			return
		}

		cnt := 0
		for range n {
			driver, err := utils.GenerateRandomDriver(cfg.Email.UserDomain)
			if err != nil {
				logger.Error("无法生成随机司机", "error", err)
				continue
			}
			if err := repo.CreateDriver(driver); err != nil {
				logger.Error("无法插入司机", "error", err)
				continue
			}
			cnt++
		}

		logger.Info("插入司机成功", "count", cnt)
	case 3:
		if n <= 0 {
			logger.Error("请输入合法的行程数量")
			return
		}

		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			logger.Error("日期格式错误", "error", err)
			return
		}

		drivers, err := repo.GetAllDrivers()
		if err != nil {
			logger.Error("无法获取司机列表", "error", err)
			return
		}
		if len(drivers) == 0 {
			logger.Error("没有司机，请先插入司机")
			return
		}

		trips := make([]*domain.Trip, 0, len(drivers)*n)
		for _, driver := range drivers {
			for range n {
				trips = append(trips, utils.GenerateRandomTrip(driver, day))
			}
		}

		if err := repo.InsertTrips(trips); err != nil {
			logger.Error("无法插入行程", "error", err)
			return
		}

		logger.Info("插入行程成功", "count", len(trips), "date", date)
	case 4:
		seed.SeedTripsFromCSV(repo, file)
	default:
		logger.Error("指定的操作非法")
	}
}
