package logsvc

import (
	"log"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/facultypref/core"
)

// RollbarLogger prints every entry to a std logger and, when reporting, sends it to rollbar too.
type RollbarLogger struct {
	std    *log.Logger
	report bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std, report: true}
}

// Enable toggles reporting to rollbar; entries are always printed.
func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", rollbar.Debug, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log("INFO", rollbar.Info, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log("WARN", rollbar.Warning, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log("ERROR", rollbar.Error, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", rollbar.Critical, msg, args)
	if l.report {
		rollbar.Wait()
	}
	os.Exit(1)
}

func (l RollbarLogger) log(level string, send func(...interface{}), msg string, args []interface{}) {
	person, extras := splitPerson(args)
	if l.report {
		// rollbar keeps a single person for the whole process
		if person != nil {
			rollbar.SetPerson(person.ID, person.Username, person.Email)
		} else {
			rollbar.ClearPerson()
		}
		send(append([]interface{}{msg}, extras...)...)
	}

	l.std.Printf("%s %s", level, msg)
	for _, extra := range extras {
		l.std.Printf("%s %+v", level, extra)
	}
}

// splitPerson takes the first core.Person out of args.
func splitPerson(args []interface{}) (*core.Person, []interface{}) {
	var person *core.Person
	extras := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if p, ok := arg.(core.Person); ok {
			if person == nil {
				person = &p
			}
			continue
		}
		extras = append(extras, arg)
	}
	return person, extras
}
