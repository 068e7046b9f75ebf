package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	JwtSecret string `yaml:"jwt_secret"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system"`
	Web      WebConfig `yaml:"web"`
	Database DBConfig  `yaml:"database"`
	Logger   LogConfig `yaml:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "bookstore",
		Location: "Asia/Ho_Chi_Minh",
		Workdir:  "/var/bookstore",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		JwtSecret: "9b6bcdb4-8b47-4f2e-9a1a-bookstore",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "bookstore",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/bookstore/bookstore.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	var iv int64
	if _, err := fmt.Sscanf(v, "%d", &iv); err == nil {
		f(iv)
	}
}

// LoadConfig reads the YAML config file and applies environment overrides.
// A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
			}
		}
	}

	setEnvValue("BOOKSTORE_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("BOOKSTORE_SYSTEM_DEBUG", func(v string) { cfg.System.Debug = v == "true" || v == "1" })
	setEnvValue("BOOKSTORE_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvInt64Value("BOOKSTORE_WEB_PORT", func(v int64) { cfg.Web.Port = int(v) })
	setEnvValue("BOOKSTORE_WEB_JWT_SECRET", func(v string) { cfg.Web.JwtSecret = v })
	setEnvValue("BOOKSTORE_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("BOOKSTORE_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvInt64Value("BOOKSTORE_DB_PORT", func(v int64) { cfg.Database.Port = int(v) })
	setEnvValue("BOOKSTORE_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("BOOKSTORE_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("BOOKSTORE_DB_PWD", func(v string) { cfg.Database.Passwd = v })

	return cfg
}
