package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/user"
)

// RollbarLogger reports to rollbar (when enabled) and writes every entry to a local zap logger.
type RollbarLogger struct {
	local *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(local *zap.SugaredLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{local: local}
}

// NewZapLogger returns a development (console, debug level) logger in debug mode and a production (JSON) one otherwise.
func NewZapLogger(conf *core.Config) (*zap.SugaredLogger, error) {
	var zconf zap.Config
	if conf.Debug {
		zconf = zap.NewDevelopmentConfig()
	} else {
		zconf = zap.NewProductionConfig()
		zconf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if conf.TestMode {
		zconf.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	logger, err := zconf.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return logger.Sugar().With("app", conf.AppName, "env", conf.Env, "build", conf.Build), nil
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes both the local logger and pending rollbar reports.
func (l RollbarLogger) Sync() {
	rollbar.Wait()
	_ = l.local.Sync()
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set logged in User
		if usr, ok := arg.(user.User); ok {
			if !usrSet && usr.ID != "" { // only set one User
				rollbar.SetPerson(usr.ID, usr.Username, usr.Email)
				usrSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

// fields maps args to zap key/value pairs.
func (l RollbarLogger) fields(args []interface{}) []interface{} {
	kvs := make([]interface{}, 0, 2*len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			kvs = append(kvs, zap.Error(a))
		case map[string]interface{}:
			for k, v := range a {
				kvs = append(kvs, k, v)
			}
		case user.User:
			if a.ID != "" {
				kvs = append(kvs, "user", a.Username)
			}
		default:
			kvs = append(kvs, zap.Any("extra", a))
		}
	}
	return kvs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.local.Debugw(msg, l.fields(args)...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.local.Infow(msg, l.fields(args)...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.local.Warnw(msg, l.fields(args)...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.local.Errorw(msg, l.fields(args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.local.Fatalw(msg, l.fields(args)...)
}
