package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/safari-ops/entry-scheduler/backend/internal/optimizer"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"120"` // 优化请求可能运行较长时间
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
		LockExpiration      int    `env:"LOCK_EXPIRATION" envDefault:"300"` // 优化任务锁的过期时间
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 分钟
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Optimizer OptimizerConfig `envPrefix:"OPTIMIZER_"`
}

// OptimizerConfig 优化算法的默认参数，每次请求可以覆盖其中的一部分
type OptimizerConfig struct {
	WindowStart   float64 `env:"WINDOW_START" envDefault:"5.5"`
	WindowEnd     float64 `env:"WINDOW_END" envDefault:"16.5"`
	TimePrecision int     `env:"TIME_PRECISION" envDefault:"1"`
	CollisionStep float64 `env:"COLLISION_STEP" envDefault:"0.5"`
	Capacity      int     `env:"CAPACITY" envDefault:"4"`
	SpeedFloor    float64 `env:"SPEED_FLOOR" envDefault:"30"`

	CongestionMin int     `env:"CONGESTION_MIN" envDefault:"0"`
	CongestionMax int     `env:"CONGESTION_MAX" envDefault:"5"`
	SpeedMin      float64 `env:"SPEED_MIN" envDefault:"30"`
	SpeedMax      float64 `env:"SPEED_MAX" envDefault:"60"`

	TimeJitter       float64 `env:"TIME_JITTER" envDefault:"1"`
	CongestionJitter int     `env:"CONGESTION_JITTER" envDefault:"1"`
	SpeedJitter      int     `env:"SPEED_JITTER" envDefault:"5"`
	InitJitter       float64 `env:"INIT_JITTER" envDefault:"0.2"`

	PopulationSize  int     `env:"POPULATION_SIZE" envDefault:"50"`
	Generations     int     `env:"GENERATIONS" envDefault:"300"`
	MutationRateMax float64 `env:"MUTATION_RATE_MAX" envDefault:"0.1"`
	MutationRateMin float64 `env:"MUTATION_RATE_MIN" envDefault:"0.01"`
	EliteCount      int     `env:"ELITE_COUNT" envDefault:"0"`

	InitialTemperature float64 `env:"INITIAL_TEMPERATURE" envDefault:"1000"`
	CoolingRate        float64 `env:"COOLING_RATE" envDefault:"0.99"`
	MinTemperature     float64 `env:"MIN_TEMPERATURE" envDefault:"1"`
	SAMutationRate     float64 `env:"SA_MUTATION_RATE" envDefault:"0.1"`

	NumParticles  int     `env:"NUM_PARTICLES" envDefault:"50"`
	PSOIterations int     `env:"PSO_ITERATIONS" envDefault:"500"`
	Inertia       float64 `env:"INERTIA" envDefault:"0.5"`
	Cognitive     float64 `env:"COGNITIVE" envDefault:"1.5"`
	Social        float64 `env:"SOCIAL" envDefault:"1.5"`
	PositionBand  float64 `env:"POSITION_BAND" envDefault:"0.2"`

	InitialVelocity float64 `env:"INITIAL_VELOCITY" envDefault:"0.5"`

	DiversityThreshold float64 `env:"DIVERSITY_THRESHOLD" envDefault:"0.1"`

	Weights struct {
		TimeBase        float64 `env:"TIME_BASE" envDefault:"5"`
		CongestionBase  float64 `env:"CONGESTION_BASE" envDefault:"2"`
		CongestionSlope float64 `env:"CONGESTION_SLOPE" envDefault:"1"`
		SpeedBase       float64 `env:"SPEED_BASE" envDefault:"1.5"`
		SpeedSlope      float64 `env:"SPEED_SLOPE" envDefault:"1"`
		Violation       float64 `env:"VIOLATION" envDefault:"15"`
	} `envPrefix:"WEIGHT_"`

	MaxIterations int           `env:"MAX_ITERATIONS" envDefault:"0"`
	TimeLimit     time.Duration `env:"TIME_LIMIT" envDefault:"60s"`
	Workers       int           `env:"WORKERS" envDefault:"4"`
	Seed          int64         `env:"SEED" envDefault:"0"`
}

// Parameters 转换为优化器参数，没有在配置中出现的字段使用优化器的默认值
func (c OptimizerConfig) Parameters() *optimizer.Parameters {
	p := optimizer.DefaultParameters()

	p.WindowStart = c.WindowStart
	p.WindowEnd = c.WindowEnd
	p.TimePrecision = c.TimePrecision
	p.CollisionStep = c.CollisionStep
	p.Capacity = c.Capacity
	p.SpeedFloor = c.SpeedFloor

	p.CongestionMin = c.CongestionMin
	p.CongestionMax = c.CongestionMax
	p.SpeedMin = c.SpeedMin
	p.SpeedMax = c.SpeedMax

	p.TimeJitter = c.TimeJitter
	p.CongestionJitter = c.CongestionJitter
	p.SpeedJitter = c.SpeedJitter
	p.InitJitter = c.InitJitter

	p.PopulationSize = c.PopulationSize
	p.Generations = c.Generations
	p.MutationRateMax = c.MutationRateMax
	p.MutationRateMin = c.MutationRateMin
	p.EliteCount = c.EliteCount

	p.InitialTemperature = c.InitialTemperature
	p.CoolingRate = c.CoolingRate
	p.MinTemperature = c.MinTemperature
	p.SAMutationRate = c.SAMutationRate

	p.NumParticles = c.NumParticles
	p.PSOIterations = c.PSOIterations
	p.Inertia = c.Inertia
	p.Cognitive = c.Cognitive
	p.Social = c.Social
	p.PositionBand = c.PositionBand
	p.InitialVelocity = c.InitialVelocity

	p.DiversityThreshold = c.DiversityThreshold

	p.Weights = optimizer.WeightSchedule{
		TimeBase:        c.Weights.TimeBase,
		CongestionBase:  c.Weights.CongestionBase,
		CongestionSlope: c.Weights.CongestionSlope,
		SpeedBase:       c.Weights.SpeedBase,
		SpeedSlope:      c.Weights.SpeedSlope,
		Violation:       c.Weights.Violation,
	}

	p.MaxIterations = c.MaxIterations
	p.TimeLimit = c.TimeLimit
	p.Workers = c.Workers
	p.Seed = c.Seed

	return p
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
