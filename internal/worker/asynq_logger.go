package worker

import (
	"github.com/cwmbran-celtic/clubsocial/internal/logger"

	"go.uber.org/zap"
)

// asynqLogger 将 asynq 内部日志接入 zap
type asynqLogger struct {
	log *zap.SugaredLogger
}

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{log: logger.Component("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(args...) }
