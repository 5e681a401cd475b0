// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RabbitAddress           string `yaml:"rabbit_address"` // пусто — события не публикуются
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Upstreams               `yaml:"upstreams"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// Upstreams — базовые адреса API внешних школьных сервисов. Адрес инстанса
// Pronote и ScoDoc у каждого заведения свой, поэтому он хранится в аккаунте,
// а не здесь.
type Upstreams struct {
	EcoleDirecteURL string `yaml:"ecoledirecte_url" env-default:"https://api.ecoledirecte.com/v3"`
	SkolengoURL     string `yaml:"skolengo_url" env-default:"https://api.skolengo.com/api/v1"`
	TurboselfURL    string `yaml:"turboself_url" env-default:"https://api-rest-prod.incb.fr/api"`
	AliseURL        string `yaml:"alise_url" env-default:"https://aliseadulte.alise.net/api"`
	ARDURL          string `yaml:"ard_url" env-default:"https://ard-gec-api.ard.fr/api"`
	IzlyURL         string `yaml:"izly_url" env-default:"https://mon-espace.izly.fr/api"`
	IUTLannionURL   string `yaml:"iutlannion_url" env-default:"https://notes.iutlan.univ-rennes1.fr/api"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
