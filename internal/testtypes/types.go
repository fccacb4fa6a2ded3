package testtypes

import (
	"context"
	"reflect"
)

var (
	TypeLogger         = reflect.TypeFor[Logger]()
	TypeConsoleLogger  = reflect.TypeFor[*ConsoleLogger]()
	TypeUserStore      = reflect.TypeFor[UserStore]()
	TypeAuditLog       = reflect.TypeFor[AuditLog]()
	TypeRequestTracker = reflect.TypeFor[*RequestTracker]()
)

type Logger interface {
	Log(msg string)
	Name() string
}

type ConsoleLogger struct{}

func (*ConsoleLogger) Log(string)   {}
func (*ConsoleLogger) Name() string { return "console" }

type TestLogger struct {
	Messages []string
}

func (l *TestLogger) Log(msg string) { l.Messages = append(l.Messages, msg) }
func (*TestLogger) Name() string     { return "test" }

func NewConsoleLogger() Logger {
	return &ConsoleLogger{}
}

func NewTestLogger() Logger {
	return &TestLogger{}
}

type UserStore interface {
	Logger() Logger
	Close(context.Context) error
}

type SQLUserStore struct {
	logger Logger
	Closed bool
}

func (s *SQLUserStore) Logger() Logger { return s.logger }

func (s *SQLUserStore) Close(context.Context) error {
	s.Closed = true
	return nil
}

func NewUserStore(logger Logger) UserStore {
	return &SQLUserStore{logger: logger}
}

type AuditLog interface {
	Record(event string)
}

type MemoryAuditLog struct {
	Store  UserStore
	Events []string
}

func (a *MemoryAuditLog) Record(event string) { a.Events = append(a.Events, event) }

// Close has no error result to exercise the other Close signatures.
func (a *MemoryAuditLog) Close() {}

func NewAuditLog(store UserStore) AuditLog {
	return &MemoryAuditLog{Store: store}
}

// RequestTracker counts how often it is closed.
type RequestTracker struct {
	ID     int
	Closes int
}

func (t *RequestTracker) Close() error {
	t.Closes++
	return nil
}
