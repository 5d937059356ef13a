package main

import "time"

type Config struct {
	DatabasePath    string        `env:"DATABASE_PATH,required=true"`
	FlushInterval   time.Duration `env:"FLUSH_INTERVAL,default=1s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8765"`
}
