package polysynth

// Params is a tree of synthesis parameters, e.g.
//
//	Params{"envelope": Params{"attack": 0.01, "release": 0.5}}
//
// Nested levels can be either Params or map[string]any; both are treated the
// same.
type Params map[string]any

// Copy makes a deep copy of the parameter tree. Slices are not copied.
func (p Params) Copy() Params {
	if p == nil {
		return nil
	}
	ret := make(Params, len(p))
	for k, v := range p {
		switch m := v.(type) {
		case Params:
			ret[k] = m.Copy()
		case map[string]any:
			ret[k] = Params(m).Copy()
		default:
			ret[k] = v
		}
	}
	return ret
}

// Merge returns a copy of p with other written over it. Nested parameter
// trees are merged key by key instead of being replaced.
func (p Params) Merge(other Params) Params {
	ret := p.Copy()
	if ret == nil {
		ret = Params{}
	}
	for k, v := range other {
		sub, isTree := asParams(v)
		old, wasTree := asParams(ret[k])
		if isTree && wasTree {
			ret[k] = old.Merge(sub)
			continue
		}
		if isTree {
			ret[k] = sub.Copy()
			continue
		}
		ret[k] = v
	}
	return ret
}

func asParams(v any) (Params, bool) {
	switch m := v.(type) {
	case Params:
		return m, true
	case map[string]any:
		return Params(m), true
	}
	return nil, false
}
