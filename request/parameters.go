package request

// Parameter is a route parameter: a name and its raw path segment.
type Parameter struct {
	Name  string
	Value string
}

// Parameters holds route parameters in the order the router matched them.
//
// The zero value is empty and ready to use.
type Parameters struct {
	list []Parameter
}

// Set sets the value for name. An existing parameter keeps its position.
func (p *Parameters) Set(name, value string) {
	for i := range p.list {
		if p.list[i].Name == name {
			p.list[i].Value = value
			return
		}
	}

	p.list = append(p.list, Parameter{Name: name, Value: value})
}

// Get returns the value for name, or "".
func (p *Parameters) Get(name string) string {
	val, _ := p.Lookup(name)
	return val
}

// Lookup returns the value for name and whether it is set.
func (p *Parameters) Lookup(name string) (string, bool) {
	for _, param := range p.list {
		if param.Name == name {
			return param.Value, true
		}
	}

	return "", false
}

// Names returns the parameter names in order.
func (p *Parameters) Names() []string {
	names := make([]string, len(p.list))
	for i, param := range p.list {
		names[i] = param.Name
	}
	return names
}

// All returns a copy of the parameters in order.
func (p *Parameters) All() []Parameter {
	return append([]Parameter(nil), p.list...)
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	return len(p.list)
}

// Reset removes all parameters.
func (p *Parameters) Reset() {
	p.list = p.list[:0]
}
