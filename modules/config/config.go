// Package config 包含配置文件的加载与默认值生成。
package config

import (
	_ "embed" // embed 默认配置文件
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/LagrangeDev/obridge/internal/param"
)

//go:embed default_config.yml
var defaultConfig string

// Account 账号配置
type Account struct {
	Uin int64 `yaml:"uin"`
}

// Output 日志配置
type Output struct {
	LogLevel string `yaml:"log-level"`
	LogAging int    `yaml:"log-aging"`
	Debug    bool   `yaml:"debug"`
}

// Server 对外服务配置
type Server struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Prefix      string `yaml:"prefix"`
	AccessToken string `yaml:"access-token"`
	HTTPEnabled bool   `yaml:"http-enabled"`
	WSEnabled   bool   `yaml:"ws-enabled"`
}

// Reverse 反向 WS 连接配置
type Reverse struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	AccessToken string `yaml:"access-token"`
}

// RateLimit API 限速配置
type RateLimit struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
	Bucket    int     `yaml:"bucket"`
}

// Config 总配置
type Config struct {
	Account   Account   `yaml:"account"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Reverse   Reverse   `yaml:"reverse"`
	RateLimit RateLimit `yaml:"rate-limit"`
}

// Parse 从指定路径加载配置, 文件不存在时先生成默认配置
func Parse(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
		log.Infof("未找到配置文件, 已在 %v 生成默认配置.", path)
		if err = os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
			return nil, errors.Wrap(err, "写入默认配置失败")
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "读取配置文件失败")
	}
	conf := &Config{}
	if err = yaml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrap(err, "配置文件格式错误")
	}
	readEnv(conf)
	param.SetAtDefault(&conf.Output.LogLevel, "warn", "")
	param.SetAtDefault(&conf.RateLimit.Frequency, float64(1), float64(0))
	param.SetAtDefault(&conf.RateLimit.Bucket, 1, 0)
	if conf.Server.Host == "" {
		return nil, errors.New("监听地址不能为空")
	}
	if conf.Server.Port == 0 {
		return nil, errors.New("监听端口不能为空")
	}
	if conf.Reverse.Enabled && conf.Reverse.URL == "" {
		return nil, errors.New("已启用反向连接但未填写地址")
	}
	conf.Server.Prefix = normalizePrefix(conf.Server.Prefix)
	return conf, nil
}

// readEnv 以 OB_ 前缀的环境变量覆盖对应配置项
func readEnv(conf *Config) {
	if uin := os.Getenv("OB_UIN"); uin != "" {
		if v, err := strconv.ParseInt(uin, 10, 64); err == nil {
			conf.Account.Uin = v
		}
	}
	param.SetExcludeDefault(&conf.Server.Host, os.Getenv("OB_HOST"), "")
	if port := os.Getenv("OB_PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			conf.Server.Port = v
		}
	}
	param.SetExcludeDefault(&conf.Server.AccessToken, os.Getenv("OB_ACCESS_TOKEN"), "")
	if url := os.Getenv("OB_REVERSE_URL"); url != "" {
		conf.Reverse.URL = url
		conf.Reverse.Enabled = param.EnsureBool(os.Getenv("OB_REVERSE_ENABLED"), true)
	}
	param.SetExcludeDefault(&conf.Output.LogLevel, os.Getenv("OB_LOG_LEVEL"), "")
}

// normalizePrefix 保证前缀以 / 开头且以 / 结尾
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
