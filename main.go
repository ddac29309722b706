package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"guardlog-backend/internal/chatlog"
	"guardlog-backend/internal/database"
	"guardlog-backend/internal/handlers"
	"guardlog-backend/internal/hub"
	"guardlog-backend/internal/jwt"
	"guardlog-backend/internal/keyValue"
	"guardlog-backend/internal/models"
	"guardlog-backend/internal/snowflake"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"
)

func readConfigFile() (models.ConfigFile, error) {
	var cfg models.ConfigFile

	configFile, err := os.Open("config.json")
	if err != nil {
		return cfg, err
	}
	defer configFile.Close()

	bytes, err := io.ReadAll(configFile)
	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(bytes, &cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setupLogger(cfg *models.ConfigFile) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()

	if cfg.LogToFile {
		config.OutputPaths = []string{"app.log", "stdout"}
	} else {
		config.OutputPaths = []string{"stdout"}
	}

	var level zapcore.Level
	err := level.UnmarshalText([]byte(cfg.LogLevel))
	if err != nil {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

func setupRedis(cfg *models.ConfigFile) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	err := rdb.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func main() {
	fmt.Println("Reading config file...")
	cfg, err := readConfigFile()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Setting up logger...")
	sugar, err := setupLogger(&cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Connecting to database...")
	db, err := database.Setup(&cfg)
	if err != nil {
		sugar.Fatal(err)
	}

	var redisClient *redis.Client
	if !cfg.SelfContained {
		fmt.Println("Connecting to redis...")
		redisClient, err = setupRedis(&cfg)
		if err != nil {
			sugar.Fatal(err)
		}
	}

	keyValue.Setup(sugar, redisClient, cfg.SelfContained)
	hub.Setup(sugar, redisClient, cfg.SelfContained)

	flakes, err := snowflake.NewGenerator(cfg.SnowflakeWorkerID)
	if err != nil {
		sugar.Fatal(err)
	}

	isHttps := (cfg.TlsCert != "" && cfg.TlsKey != "")

	jwt.Setup(cfg.JwtSecret, isHttps)

	service := chatlog.New(db, flakes, sugar)

	var httpProtocol string
	if isHttps {
		httpProtocol = "https"
	} else {
		httpProtocol = "http"
	}

	fmt.Printf("Server is running on %s://%s:%s\n", httpProtocol, cfg.Address, cfg.Port)

	err = handlers.Setup(isHttps, &cfg, sugar, service)
	if err != nil {
		sugar.Fatal(err)
	}
}
