package di

import "slices"

// A Module is a collection of container options.
// It can be used to export a re-usable group of related services.
//
// Example:
//
//	var DatabaseModule = di.Module{
//		di.WithService(dbkit.NewPools(pool)),
//		di.WithService(NewUserStore, di.Scoped),
//	}
type Module []ContainerOption

func (Module) applyContainer(*Container) error { return nil }
func (Module) order() optionOrder              { return orderService }

// WithModule applies the options in a [Module] when calling [NewContainer] or [Container.NewScope].
func WithModule(m Module) ContainerOption {
	return m
}

func flattenModules(opts []ContainerOption) []ContainerOption {
	flat := make([]ContainerOption, 0, len(opts))
	for _, opt := range opts {
		if mod, ok := opt.(Module); ok {
			flat = append(flat, flattenModules(slices.Clone(mod))...)
			continue
		}
		flat = append(flat, opt)
	}

	return flat
}
