// Package config 提供统一的配置加载、校验与热更新能力.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/wyfcoding/quant/logging"
)

// Config 顶级配置结构.
type Config struct {
	Log     logging.Config `mapstructure:"log"     toml:"log"`
	Metrics MetricsConfig  `mapstructure:"metrics" toml:"metrics"`
	Tracing TracingConfig  `mapstructure:"tracing" toml:"tracing"`
	IDGen   IDConfig       `mapstructure:"idgen"   toml:"idgen"`
	Engine  EngineConfig   `mapstructure:"engine"  toml:"engine"`
	Jobs    []JobConfig    `mapstructure:"jobs"    toml:"jobs"    validate:"dive"`
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Port    string `mapstructure:"port"    toml:"port"    validate:"required_if=Enabled true"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// TracingConfig OpenTelemetry 链路追踪配置.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint" validate:"required_if=Enabled true"`
	SamplerRatio float64 `mapstructure:"sampler_ratio" toml:"sampler_ratio" validate:"gte=0,lte=1"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
}

// IDConfig 批次运行 ID 生成器参数.
type IDConfig struct {
	StartTime string `mapstructure:"start_time" toml:"start_time"`
	Type      string `mapstructure:"type"       toml:"type"       validate:"omitempty,oneof=snowflake sonyflake"`
	MachineID int64  `mapstructure:"machine_id" toml:"machine_id" validate:"gte=0,lte=65535"`
}

// EngineConfig 蒙特卡洛引擎参数.
// Workers 为 0 时使用 GOMAXPROCS；Seed 为 0 时每次运行使用系统熵.
type EngineConfig struct {
	Workers        int    `mapstructure:"workers"         toml:"workers"         validate:"gte=0"`
	Seed           uint64 `mapstructure:"seed"            toml:"seed"`
	JobConcurrency int    `mapstructure:"job_concurrency" toml:"job_concurrency" validate:"gte=1"`
}

// JobConfig 一次定价任务.
type JobConfig struct {
	Name         string           `mapstructure:"name"          toml:"name"          validate:"required"`
	DiscountRate float64          `mapstructure:"discount_rate" toml:"discount_rate" validate:"gt=-1"`
	Paths        int              `mapstructure:"paths"         toml:"paths"         validate:"gte=1"`
	Steps        int              `mapstructure:"steps"         toml:"steps"         validate:"gte=1"`
	Process      ProcessConfig    `mapstructure:"process"       toml:"process"`
	Instrument   InstrumentConfig `mapstructure:"instrument"    toml:"instrument"`
}

// ProcessConfig 随机过程参数，Heston 专有字段在 GBM 下忽略.
type ProcessConfig struct {
	Kind   string  `mapstructure:"kind"    toml:"kind"    validate:"oneof=gbm heston"`
	S0     float64 `mapstructure:"s0"      toml:"s0"      validate:"gt=0"`
	R      float64 `mapstructure:"r"       toml:"r"`
	Sigma  float64 `mapstructure:"sigma"   toml:"sigma"   validate:"gte=0"`
	T      float64 `mapstructure:"t"       toml:"t"       validate:"gt=0"`
	V0     float64 `mapstructure:"v0"      toml:"v0"      validate:"gte=0"`
	Kappa  float64 `mapstructure:"kappa"   toml:"kappa"`
	Theta  float64 `mapstructure:"theta"   toml:"theta"`
	SigmaV float64 `mapstructure:"sigma_v" toml:"sigma_v" validate:"gte=0"`
	Rho    float64 `mapstructure:"rho"     toml:"rho"     validate:"gte=-1,lte=1"`
}

// InstrumentConfig 合约条款，行权与结算时间以相对运行时刻的偏移表示.
type InstrumentConfig struct {
	Kind            string        `mapstructure:"kind"             toml:"kind"             validate:"oneof=vanilla barrier expression"`
	OptionType      string        `mapstructure:"option_type"      toml:"option_type"      validate:"required_unless=Kind expression"`
	Strike          float64       `mapstructure:"strike"           toml:"strike"           validate:"gte=0"`
	Currency        string        `mapstructure:"currency"         toml:"currency"         validate:"len=3"`
	ExerciseAfter   time.Duration `mapstructure:"exercise_after"   toml:"exercise_after"   validate:"gte=0"`
	SettlementAfter time.Duration `mapstructure:"settlement_after" toml:"settlement_after" validate:"gtefield=ExerciseAfter"`
	BarrierType     string        `mapstructure:"barrier_type"     toml:"barrier_type"     validate:"required_if=Kind barrier"`
	BarrierLevel    float64       `mapstructure:"barrier_level"    toml:"barrier_level"    validate:"required_if=Kind barrier"`
	Expression      string        `mapstructure:"expression"       toml:"expression"       validate:"required_if=Kind expression"`
}

var (
	vInstance = viper.New()
	validate  = validator.New()

	hookMu   sync.Mutex
	onReload []func(*Config)
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	hookMu.Lock()
	onReload = append(onReload, hook)
	hookMu.Unlock()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.service", "mcprice")
	v.SetDefault("log.module", "pricing")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("metrics.port", "9090")
	v.SetDefault("tracing.service_name", "mcprice")
	v.SetDefault("tracing.sampler_ratio", 1.0)
	v.SetDefault("idgen.type", "snowflake")
	v.SetDefault("idgen.machine_id", 1)
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.job_concurrency", 1)
}

// Load 读取 TOML 配置文件，环境变量以 APP_ 前缀覆盖同名键 (如 APP_ENGINE_SEED).
func Load(path string) (*Config, error) {
	vInstance.SetConfigFile(path)
	vInstance.SetConfigType("toml")

	vInstance.SetEnvPrefix("APP")
	vInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vInstance.AutomaticEnv()
	setDefaults(vInstance)

	if err := vInstance.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}
	return decode(vInstance)
}

func decode(v *viper.Viper) (*Config, error) {
	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := Validate(conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate 对配置做结构体校验.
func Validate(conf *Config) error {
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Watch 监听配置文件变化，校验通过的新配置交给已注册的回调.
// 新配置总是解码到新的结构体中，旧配置对正在运行的任务保持不变.
func Watch() {
	vInstance.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name, "op", event.Op.String())
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		conf, err := decode(vInstance)
		if err != nil {
			slog.Error("reload config failed", "error", err)
			return
		}

		logging.SetLevel(conf.Log.Level)
		slog.Info("config hot-reloaded and validated successfully", "jobs", len(conf.Jobs))

		hookMu.Lock()
		hooks := append([]func(*Config){}, onReload...)
		hookMu.Unlock()
		for _, hook := range hooks {
			hook(conf)
		}
	})
	vInstance.WatchConfig()
}

// PrintWithMask 脱敏打印当前配置.
func PrintWithMask(conf any) {
	data, err := json.Marshal(conf)
	if err != nil {
		slog.Error("failed to marshal config for printing", "error", err)
		return
	}

	var configMap map[string]any
	if unmarshalErr := json.Unmarshal(data, &configMap); unmarshalErr != nil {
		slog.Error("failed to unmarshal config for masking", "error", unmarshalErr)
		return
	}

	mask(configMap)

	maskedJSON, marshalErr := json.Marshal(configMap)
	if marshalErr != nil {
		slog.Error("failed to marshal masked config", "error", marshalErr)
		return
	}

	slog.Info("current effective configuration", "config", string(maskedJSON))
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "dsn", "key", "token"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)
			continue
		}

		if slice, ok := val.([]any); ok {
			for _, item := range slice {
				if itemMap, ok := item.(map[string]any); ok {
					mask(itemMap)
				}
			}
			continue
		}

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"
				break
			}
		}
	}
}
