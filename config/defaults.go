package config

import "time"

// DefaultConfig returns the configuration the service runs with when
// nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		LLM:        DefaultLLMConfig(),
		Database:   DefaultDatabaseConfig(),
		Redis:      DefaultRedisConfig(),
		Log:        DefaultLogConfig(),
		Discussion: DefaultDiscussionConfig(),
	}
}

// DefaultServerConfig returns the default HTTP server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultLLMConfig returns the default gateway configuration: a local
// ollama instance.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:          "ollama",
		BaseURL:           "",
		Model:             "llama3",
		Timeout:           60 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 5,
	}
}

// DefaultDatabaseConfig returns the default persistence configuration: an
// embedded SQLite file.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Name:            "agora.db",
		Host:            "localhost",
		Port:            5432,
		User:            "agora",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultRedisConfig returns the default event journal configuration. The
// journal is off until enabled.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:      false,
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		OutputPaths:  []string{"stdout"},
		EnableCaller: true,
	}
}

// DefaultDiscussionConfig returns the default engine tuning.
func DefaultDiscussionConfig() DiscussionConfig {
	return DiscussionConfig{
		MaxConcurrent: 8,
	}
}
