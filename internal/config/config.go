package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはクライアント全体の設定
type Config struct {
	APIBaseURL  string        // リモートAPIのベースURL
	HTTPTimeout time.Duration // HTTPクライアントのタイムアウト
	DataDir     string        // 永続ストレージの置き場所（空ならインメモリ）
	GoEnv       string        // dev/prod
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	timeoutSec, err := atoiOr("GAS_HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBaseURL:  os.Getenv("GAS_API_BASE_URL"),
		HTTPTimeout: time.Duration(timeoutSec) * time.Second,
		DataDir:     os.Getenv("GAS_DATA_DIR"),
		GoEnv:       getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("GAS_API_BASE_URL is required")
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("GAS_HTTP_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
