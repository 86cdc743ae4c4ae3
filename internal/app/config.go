// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/memo-sync-service/pkg/storage"
	"github.com/haierkeys/memo-sync-service/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	App      AppSettings    `yaml:"app"`
	User     UserConfig     `yaml:"user"`
	Security SecurityConfig `yaml:"security"`
	Cors     CorsConfig     `yaml:"cors"`
	Tracer   TracerConfig   `yaml:"tracer"`
	Backup   BackupConfig   `yaml:"backup"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址（/metrics、/debug/vars），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key"`
	TokenExpiry  string `yaml:"token-expiry" default:"30d"` // Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	RequireHTTPS bool   `yaml:"require-https"`               // 拒绝非 HTTPS 请求
	TrustProxy   bool   `yaml:"trust-proxy"`                 // 信任反向代理的 X-Forwarded-Proto
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite | mysql | postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机，host:port
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate *bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime *bool `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// SyncConfig 备忘录同步配置
type SyncConfig struct {
	// Backend 持久化后端 database | file | redis | memory
	Backend string `yaml:"backend" default:"database"`
	// FileDir file 后端的目录
	FileDir string `yaml:"file-dir" default:"storage/memos"`
	// RedisURL redis 后端地址，如 redis://localhost:6379/0
	RedisURL string `yaml:"redis-url" default:"redis://127.0.0.1:6379/0"`
	// RedisPrefix redis 键前缀
	RedisPrefix string `yaml:"redis-prefix" default:"memo-sync:"`
	// StoreIdleTime 租户内存镜像的空闲回收时间
	StoreIdleTime string `yaml:"store-idle-time" default:"30m"`
	// MaxMemosPerRequest 单次请求的备忘录与删除条目上限，0 表示不限制
	MaxMemosPerRequest int `yaml:"max-memos-per-request" default:"5000"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable *bool `yaml:"register-is-enable" default:"true"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒），0 表示不限制
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
}

// CorsConfig 跨域配置
type CorsConfig struct {
	AllowOrigin string `yaml:"allow-origin" default:"*"`
	MaxAge      int    `yaml:"max-age" default:"600"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled *bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// BackupConfig 快照备份配置
type BackupConfig struct {
	Enabled     bool           `yaml:"enabled"`
	Cron        string         `yaml:"cron" default:"0 3 * * *"`
	Concurrency int            `yaml:"concurrency" default:"4"`
	Keep        int            `yaml:"keep" default:"7"`
	Storage     storage.Config `yaml:"storage"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段；开关使用 *bool，显式的 false 不会被覆盖
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *AppConfig) validate() error {
	for name, v := range map[string]string{
		"security.token-expiry":       c.Security.TokenExpiry,
		"sync.store-idle-time":        c.Sync.StoreIdleTime,
		"database.conn-max-lifetime":  c.Database.ConnMaxLifetime,
		"database.conn-max-idle-time": c.Database.ConnMaxIdleTime,
	} {
		if _, err := util.ParseDuration(v); err != nil {
			return errors.Wrapf(err, "invalid %s %q", name, v)
		}
	}
	return nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if d, err := util.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// IsRequireHTTPS 是否只接受 HTTPS 请求
func (c *AppConfig) IsRequireHTTPS() bool {
	return c.Security.RequireHTTPS
}

// IsTrustProxy 是否信任反向代理传入的协议头
func (c *AppConfig) IsTrustProxy() bool {
	return c.Security.TrustProxy
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return parseDurationOr(c.Security.TokenExpiry, 30*24*time.Hour)
}

// GetStoreIdleTime 获取租户镜像的空闲回收时间
func (c *AppConfig) GetStoreIdleTime() time.Duration {
	return parseDurationOr(c.Sync.StoreIdleTime, 30*time.Minute)
}

// GetContextTimeout 获取请求上下文超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// IsAutoMigrate 是否自动迁移
func (c *AppConfig) IsAutoMigrate() bool {
	return c.Database.AutoMigrate == nil || *c.Database.AutoMigrate
}

// IsParseTime mysql 连接是否解析时间
func (c *AppConfig) IsParseTime() bool {
	return c.Database.ParseTime == nil || *c.Database.ParseTime
}

// IsRegisterEnabled 是否允许注册
func (c *AppConfig) IsRegisterEnabled() bool {
	return c.User.RegisterIsEnable == nil || *c.User.RegisterIsEnable
}

// IsTracerEnabled 是否启用请求追踪
func (c *AppConfig) IsTracerEnabled() bool {
	return c.Tracer.Enabled == nil || *c.Tracer.Enabled
}
