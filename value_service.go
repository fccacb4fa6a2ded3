package di

import (
	"reflect"

	"github.com/sectrean/scope-kit/internal/errors"
)

type valueService struct {
	t             reflect.Type
	val           any
	scope         *Container
	tag           any
	closerFactory closerFactory
	aliases       []reflect.Type
}

func newValueService(val any, opts ...ServiceOption) (*valueService, error) {
	t := reflect.TypeOf(val)
	if err := validateServiceType(t); err != nil {
		return nil, err
	}

	svc := &valueService{
		t:   t,
		val: val,
	}

	err := applyOptions(opts, func(opt ServiceOption) error {
		return opt.applyService(svc)
	})
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *valueService) Type() reflect.Type {
	return s.t
}

func (s *valueService) Scope() *Container {
	return s.scope
}

func (s *valueService) setScope(c *Container) {
	s.scope = c
}

func (s *valueService) Aliases() []reflect.Type {
	return s.aliases
}

func (s *valueService) AddAlias(alias reflect.Type) error {
	if !s.t.AssignableTo(alias) {
		return errors.Errorf("type %s not assignable to %s", s.t, alias)
	}

	s.aliases = append(s.aliases, alias)
	return nil
}

func (*valueService) Lifetime() Lifetime {
	return Singleton
}

func (*valueService) setLifetime(Lifetime) {
	// Values are always singletons.
}

func (s *valueService) Tag() any {
	return s.tag
}

func (s *valueService) setTag(tag any) {
	s.tag = tag
}

func (*valueService) Dependencies() []serviceKey {
	return nil
}

func (s *valueService) CloserFor(val any) Closer {
	// The container is not responsible for closing values unless WithCloser or
	// WithCloseFunc was used.
	if isNil(val) || s.closerFactory == nil {
		return nil
	}

	return s.closerFactory(val)
}

func (s *valueService) setCloserFactory(cf closerFactory) {
	s.closerFactory = cf
}

func (s *valueService) New([]reflect.Value) (any, error) {
	return s.val, nil
}

var _ service = (*valueService)(nil)
