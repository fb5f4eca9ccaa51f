package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// SchedulerConfig 是遗传算法相关的配置，离线命令行工具只需要这一部分
type SchedulerConfig struct {
	Generations    int32   `env:"GENERATIONS" envDefault:"500"`
	PopulationSize int32   `env:"POPULATION_SIZE" envDefault:"250"`
	MutationRate   float64 `env:"MUTATION_RATE" envDefault:"0.1"`
	Elitism        bool    `env:"ELITISM" envDefault:"false"`
	Workers        int     `env:"WORKERS" envDefault:"0"` // 为 0 时使用 CPU 核数
	Seed           uint64  `env:"SEED" envDefault:"0"`    // 为 0 时使用随机种子
	CatalogFile    string  `env:"CATALOG_FILE"`           // 为空时使用内置的默认目录
	PlotFile       string  `env:"PLOT_FILE" envDefault:"fitness_plot.png"`
	RunTimeout     int     `env:"RUN_TIMEOUT" envDefault:"300"` // 单次排课的最长时间，单位为秒
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN            string `env:"DSN,required"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout   int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		MaxOpenConns   int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns   int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime    int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Admin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
	} `envPrefix:"ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 14 天，单位为小时
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
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
		QueueName      string `env:"QUEUE_NAME" envDefault:"scheduling_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD,required"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
		RunExpiration    int    `env:"RUN_EXPIRATION" envDefault:"86400"` // 排课任务状态的保存时间，单位为秒
	} `envPrefix:"REDIS_"`
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

// LoadSchedulerConfig 只读取 SCHEDULER_ 开头的环境变量，不要求数据库等服务的配置
func LoadSchedulerConfig() (*SchedulerConfig, error) {
	cfg := &SchedulerConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "SCHEDULER_"}); err != nil {
		return nil, firstError(err)
	}

	return cfg, nil
}

func firstError(err error) error {
	aggErr := env.AggregateError{}
	if ok := errors.As(err, &aggErr); ok && len(aggErr.Errors) > 0 {
		// 只返回第一个错误使得日志更清晰
		return aggErr.Errors[0]
	}
	return err
}
