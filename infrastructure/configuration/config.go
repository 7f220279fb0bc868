package configuration

import (
	"fmt"
	"os"
	"strconv"

	"post-radar/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Source      Source      `json:"source"`
	Translate   Translate   `json:"translate"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mssql Db `json:"mssql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

// Source holds defaults for the live provider; per-member settings stored in
// the database take precedence.
type Source struct {
	BaseURL    string `json:"baseURL"`
	FetchLimit int    `json:"fetchLimit"`
}

// Translate holds pipeline defaults; credentials always come from member
// settings.
type Translate struct {
	Concurrency  int `json:"concurrency"`
	BacklogLimit int `json:"backlogLimit"`
}

var C Config

func init() {
	LoadConfig()
	initApp(&C)
	initDatabase(&C)
}

func LoadConfig() {
	name := getConfigName()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
}

func getConfigName() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

// Environment variables override file values so container deploys need no
// config file at all.
func initApp(c *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.App.Port = port
		}
	}
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.App.SecretKey = v
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if c.Source.FetchLimit == 0 {
		c.Source.FetchLimit = 50
	}
	if c.Translate.Concurrency == 0 {
		c.Translate.Concurrency = 3
	}
	if c.Translate.BacklogLimit == 0 {
		c.Translate.BacklogLimit = 20
	}
}

func initDatabase(c *Config) {
	override := func(dst *Db, prefix string) {
		if v := os.Getenv(prefix + "_HOST"); v != "" {
			dst.Host = v
		}
		if v := os.Getenv(prefix + "_PORT"); v != "" {
			dst.Port = v
		}
		if v := os.Getenv(prefix + "_USER"); v != "" {
			dst.User = v
		}
		if v := os.Getenv(prefix + "_PASSWORD"); v != "" {
			dst.Password = v
		}
		if v := os.Getenv(prefix + "_NAME"); v != "" {
			dst.Name = v
		}
	}
	override(&c.Database.Psql, "PSQL")
	override(&c.Database.MySql, "MYSQL")
	override(&c.Database.Mssql, "MSSQL")
	override(&c.Database.Mongo, "MONGO")
}
