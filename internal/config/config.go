package config

import (
	"encoding/json"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Auction  AuctionConfig  `json:"auction"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	Password       string `json:"password"`
	DBName         string `json:"dbname"`
	SSLMode        string `json:"sslmode"`
	MigrationsPath string `json:"migrations_path"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuctionConfig struct {
	// Settlement is armed from a bid only when the auction ends within this
	// many hours; auctions outside the window are picked up by the sweep.
	ArmLookaheadHours    int `json:"arm_lookahead_hours"`
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
	FeedLimit            int `json:"feed_limit"`
	FeedCacheTTLSeconds  int `json:"feed_cache_ttl_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	if config.Auction.ArmLookaheadHours == 0 {
		config.Auction.ArmLookaheadHours = 24
	}
	if config.Auction.SweepIntervalSeconds == 0 {
		config.Auction.SweepIntervalSeconds = 60
	}
	if config.Auction.FeedLimit == 0 {
		config.Auction.FeedLimit = 20
	}
	if config.Auction.FeedCacheTTLSeconds == 0 {
		config.Auction.FeedCacheTTLSeconds = 5
	}

	return &config, nil
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
