package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/primmesh/pkg/mesh"
	"github.com/chazu/primmesh/pkg/scene"
	"github.com/chazu/primmesh/pkg/shape"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

// Defaults for options a script leaves out.
const (
	DefaultRadius             = 1.0
	DefaultInnerRadius        = 0.5
	DefaultHeight             = 1.0
	DefaultSize               = 1.0
	DefaultSubdivisions       = 16
	DefaultSphereSubdivisions = 8
	DefaultTorusFaces         = 8
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites script source into something zygomys parses:
//
//   - :keyword becomes the string "__kw_keyword", so keywords never collide
//     with user variables.
//   - kebab-case identifiers become snake_case, since zygomys reads a
//     hyphen as subtraction.
//   - ; line comments become // comments.
//
// String literals are copied untouched. Newlines are preserved so error
// line numbers still match the script.
func preprocessSource(source string) string {
	src := []byte(source)
	out := make([]byte, 0, len(src)+len(src)/4)

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			i = copyQuoted(&out, src, i, '"', true)

		case c == '`':
			i = copyQuoted(&out, src, i, '`', false)

		case c == ';':
			out = append(out, '/', '/')
			for i < len(src) && src[i] == ';' {
				i++
			}
			for i < len(src) && src[i] != '\n' {
				out = append(out, src[i])
				i++
			}

		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKWChar(src[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, src[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// copyQuoted copies the literal starting at src[start] through its closing
// quote and returns the index after it.
func copyQuoted(out *[]byte, src []byte, start int, quote byte, escapes bool) int {
	*out = append(*out, src[start])
	i := start + 1
	for i < len(src) && src[i] != quote {
		if escapes && src[i] == '\\' && i+1 < len(src) {
			*out = append(*out, src[i], src[i+1])
			i += 2
			continue
		}
		*out = append(*out, src[i])
		i++
	}
	if i < len(src) {
		*out = append(*out, src[i])
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Sexp wrappers
// ---------------------------------------------------------------------------

// sexpVec3 is the value of (vec3 x y z).
type sexpVec3 struct {
	vec mgl32.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpColor is the value of (rgb r g b).
type sexpColor struct {
	rgb mgl32.Vec3
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgb %g %g %g)", c.rgb.X(), c.rgb.Y(), c.rgb.Z())
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

// sexpItem is returned by every shape builtin.
type sexpItem struct {
	name string
	kind string
}

func (it *sexpItem) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", it.kind, it.name)
}
func (it *sexpItem) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a rewritten keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs splits a call's arguments into keyword and positional values.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

// unknown returns an error naming every keyword not in allowed.
func (pa kwArgs) unknown(allowed []string) error {
	bad := lo.Filter(lo.Keys(pa.kw), func(k string, _ int) bool {
		return !slices.Contains(allowed, k)
	})
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return fmt.Errorf("unknown option :%s (accepted: :%s)",
		strings.Join(bad, ", :"), strings.Join(allowed, " :"))
}

// float returns the keyword's number or def when absent.
func (pa kwArgs) float(key string, def float32) (float32, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return float32(f), nil
}

// count returns the keyword's whole number or def when absent.
func (pa kwArgs) count(key string, def int) (int, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// vec returns the keyword's vec3 or def when absent.
func (pa kwArgs) vec(key string, def mgl32.Vec3) (mgl32.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("%s: %w", key, err)
	}
	return vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

// toInt accepts integers and floats with no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected whole number, got %s", s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (mgl32.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl32.Vec3{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
}

// toColor accepts (rgb ...) and, for convenience, (vec3 ...).
func toColor(s zygo.Sexp) (mgl32.Vec3, error) {
	switch v := s.(type) {
	case *sexpColor:
		return v.rgb, nil
	case *sexpVec3:
		return v.vec, nil
	}
	return mgl32.Vec3{}, fmt.Errorf("expected rgb color, got %s", s.SexpString(nil))
}

// threeFloats reads exactly three numeric arguments.
func threeFloats(fn string, args []zygo.Sexp) (mgl32.Vec3, error) {
	if len(args) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%s requires exactly 3 arguments, got %d", fn, len(args))
	}
	var v mgl32.Vec3
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// commonOptions are accepted by every shape builtin.
var commonOptions = []string{"color", "at"}

// shapeBuilder turns parsed keyword arguments into a shape.
type shapeBuilder func(pa kwArgs) (shape.Shape, error)

// registerBuiltins installs the scene builtins into env. Every shape
// builtin appends an item to sc.
//
// Source must go through preprocessSource first so keywords are
// recognizable.
func registerBuiltins(env *zygo.Zlisp, sc *scene.Scene) {

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := threeFloats("vec3", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: v}, nil
	})

	// (rgb r g b), components in [0, 1]
	env.AddFunction("rgb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := threeFloats("rgb", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		for i := range v {
			if v[i] < 0 || v[i] > 1 {
				return zygo.SexpNull, fmt.Errorf("rgb: component %d out of range [0, 1]: %g", i+1, v[i])
			}
		}
		return &sexpColor{rgb: v}, nil
	})

	// (cube :size 1)
	defineShape(env, sc, "cube", []string{"size"}, func(pa kwArgs) (shape.Shape, error) {
		size, err := pa.float("size", DefaultSize)
		return shape.Cube{Size: size}, err
	})

	// (cuboid :size (vec3 1 2 3))
	defineShape(env, sc, "cuboid", []string{"size"}, func(pa kwArgs) (shape.Shape, error) {
		dims, err := pa.vec("size", mgl32.Vec3{DefaultSize, DefaultSize, DefaultSize})
		return shape.Cuboid{Dimensions: dims}, err
	})

	// (cone :radius 1 :height 1 :subdivisions 16)
	defineShape(env, sc, "cone", []string{"radius", "height", "subdivisions"}, func(pa kwArgs) (shape.Shape, error) {
		var c shape.Cone
		var err error
		if c.Radius, err = pa.float("radius", DefaultRadius); err != nil {
			return nil, err
		}
		if c.Height, err = pa.float("height", DefaultHeight); err != nil {
			return nil, err
		}
		c.Subdivisions, err = pa.count("subdivisions", DefaultSubdivisions)
		return c, err
	})

	// (cylinder :radius 1 :height 1 :subdivisions 16)
	defineShape(env, sc, "cylinder", []string{"radius", "height", "subdivisions"}, func(pa kwArgs) (shape.Shape, error) {
		var c shape.Cylinder
		var err error
		if c.Radius, err = pa.float("radius", DefaultRadius); err != nil {
			return nil, err
		}
		if c.Height, err = pa.float("height", DefaultHeight); err != nil {
			return nil, err
		}
		c.Subdivisions, err = pa.count("subdivisions", DefaultSubdivisions)
		return c, err
	})

	// (tube :outer-radius 1 :inner-radius 0.5 :height 1 :subdivisions 16)
	defineShape(env, sc, "tube", []string{"outer-radius", "inner-radius", "height", "subdivisions"}, func(pa kwArgs) (shape.Shape, error) {
		var t shape.Tube
		var err error
		if t.OuterRadius, err = pa.float("outer-radius", DefaultRadius); err != nil {
			return nil, err
		}
		if t.InnerRadius, err = pa.float("inner-radius", DefaultInnerRadius); err != nil {
			return nil, err
		}
		if t.Height, err = pa.float("height", DefaultHeight); err != nil {
			return nil, err
		}
		t.Subdivisions, err = pa.count("subdivisions", DefaultSubdivisions)
		return t, err
	})

	// (torus :outer-radius 1 :inner-radius 0.5 :slices 16 :faces 8)
	defineShape(env, sc, "torus", []string{"outer-radius", "inner-radius", "slices", "faces"}, func(pa kwArgs) (shape.Shape, error) {
		var t shape.Torus
		var err error
		if t.OuterRadius, err = pa.float("outer-radius", DefaultRadius); err != nil {
			return nil, err
		}
		if t.InnerRadius, err = pa.float("inner-radius", DefaultInnerRadius); err != nil {
			return nil, err
		}
		if t.SubdivisionsA, err = pa.count("slices", DefaultSubdivisions); err != nil {
			return nil, err
		}
		t.SubdivisionsB, err = pa.count("faces", DefaultTorusFaces)
		return t, err
	})

	// (sphere :radius 1 :subdivisions 8)
	defineShape(env, sc, "sphere", []string{"radius", "subdivisions"}, func(pa kwArgs) (shape.Shape, error) {
		var s shape.Sphere
		var err error
		if s.Radius, err = pa.float("radius", DefaultRadius); err != nil {
			return nil, err
		}
		s.Subdivisions, err = pa.count("subdivisions", DefaultSphereSubdivisions)
		return s, err
	})
}

// defineShape registers a builtin named kind that accepts an optional name
// string, the shape's own options and the common :color and :at options.
func defineShape(env *zygo.Zlisp, sc *scene.Scene, kind string, options []string, build shapeBuilder) {
	allowed := slices.Concat(options, commonOptions)

	env.AddFunction(kind, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknown(allowed); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
		}

		it := scene.Item{Color: mesh.DefaultColor}

		switch len(pa.positional) {
		case 0:
		case 1:
			n, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", kind, err)
			}
			it.Name = n
		default:
			return zygo.SexpNull, fmt.Errorf("%s: expected at most one positional name, got %d arguments", kind, len(pa.positional))
		}

		s, err := build(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
		}
		it.Shape = s

		if v, ok := pa.kw["color"]; ok {
			if it.Color, err = toColor(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: color: %w", kind, err)
			}
		}
		if it.Position, err = pa.vec("at", mgl32.Vec3{}); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
		}

		sc.Add(it)
		added := sc.Items()[sc.Len()-1]
		return &sexpItem{name: added.Name, kind: kind}, nil
	})
}
