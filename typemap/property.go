package typemap

import (
	"slices"
	"strings"

	"github.com/broady/hubgen/diag"
	"github.com/broady/hubgen/symbol"
	"github.com/broady/hubgen/transpile"
)

// Property is a resolved struct member.
type Property struct {
	// Name is the emitted property name, quoted when it is not a valid
	// identifier.
	Name string

	Optional bool
	Type     Expr
	Member   symbol.Member
}

// TypeText renders the property type. Nullable members that are not
// optional may be sent as null.
func (p Property) TypeText() string {
	if p.Type.Nullable && !p.Optional {
		return p.Type.Text + " | null"
	}
	return p.Type.Text
}

// tag returns the serialization name and options of m. Tags are ignored
// when IgnoreTags is set.
func (r *Registry) tag(m symbol.Member) (name string, opts []string) {
	if r.cfg.IgnoreTags {
		return "", nil
	}
	v, ok := m.Tag.Lookup(r.cfg.TagKey())
	if !ok {
		return "", nil
	}
	parts := strings.Split(v, ",")
	return parts[0], parts[1:]
}

// Property resolves a struct member. It reports false for members the
// serializer skips.
func (r *Registry) Property(owner *symbol.Symbol, m symbol.Member) (Property, bool, error) {
	name, opts := r.tag(m)
	if name == "-" && len(opts) == 0 {
		return Property{}, false, nil
	}

	e, err := r.plain(owner, m.Type)
	if err != nil {
		return Property{}, false, memberError(owner, m, err)
	}
	if slices.Contains(opts, "string") && (e.Text == "number" || e.Text == "boolean") {
		e = Value("string")
	}

	if name == "" {
		name = r.cfg.MemberName(m.Name)
	}
	return Property{
		Name:     transpile.PropertyName(name),
		Optional: slices.Contains(opts, "omitempty") || slices.Contains(opts, "omitzero"),
		Type:     e,
		Member:   m,
	}, true, nil
}

// memberError attributes a mapping failure to the member that caused it.
func memberError(owner *symbol.Symbol, m symbol.Member, err error) error {
	if !diag.IsCategory(err, diag.CategoryMapping) {
		return err
	}
	return &diag.Error{
		Category: diag.CategoryMapping,
		Code:     diag.CodeUnsupportedType,
		Symbol:   owner.ID() + "." + m.Name,
		Message:  "field type cannot be mapped",
		Err:      err,
	}
}

// Extends reports whether an embedded member is rendered as inheritance,
// and resolves it. Embedded structs without a serialization name have
// their fields promoted by the serializer.
func (r *Registry) Extends(m symbol.Member) (Expr, bool, error) {
	if !m.Embedded {
		return Expr{}, false, nil
	}
	if name, _ := r.tag(m); name != "" {
		return Expr{}, false, nil
	}
	t := unpointer(m.Type)
	base := t
	if t.Kind == symbol.KindInstance {
		base = t.Origin
	}
	if base == nil || base.Kind != symbol.KindStruct || base.Name == "" {
		return Expr{}, false, nil
	}
	e, err := r.Resolve(t)
	if err != nil {
		return Expr{}, false, err
	}
	if len(e.Refs) == 0 || e.Refs[0] != base {
		// Rendered opaquely (marshaler, out-of-scope or overridden).
		return Expr{}, false, nil
	}
	return e, true, nil
}

// object renders an anonymous struct as an inline object type.
func (r *Registry) object(s *symbol.Symbol) (Expr, error) {
	var (
		fields  []string
		extends []string
		exprs   []Expr
	)
	for _, m := range s.Members {
		if e, ok, err := r.Extends(m); err != nil {
			return Expr{}, err
		} else if ok {
			extends = append(extends, e.Text)
			exprs = append(exprs, e)
			continue
		}
		p, ok, err := r.Property(s, m)
		if err != nil {
			return Expr{}, err
		}
		if !ok {
			continue
		}
		opt := ""
		if p.Optional {
			opt = "?"
		}
		fields = append(fields, p.Name+opt+": "+p.TypeText())
		exprs = append(exprs, p.Type)
	}

	text := "{}"
	if len(fields) > 0 {
		text = "{ " + strings.Join(fields, "; ") + " }"
	}
	if len(extends) > 0 {
		text = strings.Join(append(extends, text), " & ")
	}
	e := Value(text)
	e.Refs = mergeRefs(exprs...)
	return e, nil
}
