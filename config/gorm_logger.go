package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

type gormLogrusLogger struct {
	slowThreshold time.Duration
	logLevel      gormlogger.LogLevel
}

func newGormLogger(levelValue string) (gormlogger.Interface, error) {
	level, err := parseGormLogLevel(levelValue)
	if err != nil {
		return nil, err
	}
	return &gormLogrusLogger{slowThreshold: defaultSlowThreshold, logLevel: level}, nil
}

func (l *gormLogrusLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *gormLogrusLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		logrus.WithContext(ctx).Infof(msg, data...)
	}
}

func (l *gormLogrusLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		logrus.WithContext(ctx).Warnf(msg, data...)
	}
}

func (l *gormLogrusLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		logrus.WithContext(ctx).Errorf(msg, data...)
	}
}

func (l *gormLogrusLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := logrus.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed": elapsed,
		"rows":    rows,
		"sql":     sql,
	})

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		if l.logLevel >= gormlogger.Error {
			entry.WithError(err).Error("gorm query error")
		}
	case elapsed > l.slowThreshold:
		if l.logLevel >= gormlogger.Warn {
			entry.WithField("threshold", l.slowThreshold).Warn("gorm slow query")
		}
	case l.logLevel >= gormlogger.Info:
		entry.Debug("gorm query")
	}
}

func parseGormLogLevel(value string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "", "warn":
		return gormlogger.Warn, nil
	case "info":
		return gormlogger.Info, nil
	default:
		return gormlogger.Warn, fmt.Errorf("invalid gorm log level %q", value)
	}
}
