package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例，未显式初始化时为 Nop，避免测试中空指针
var Log = zap.NewNop()

// InitLogger 初始化 zap 日志
// debug 模式下输出彩色控制台日志，生产环境输出 JSON
func InitLogger(debug bool) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	Log = l
}

// Sync 刷新缓冲区，main 退出前调用
func Sync() {
	_ = Log.Sync()
}
