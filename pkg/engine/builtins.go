package engine

import (
	"fmt"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/morphogen/pkg/seed"
	"github.com/chazu/morphogen/pkg/sim"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms growth-script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: slab-seed -> slab_seed
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
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

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a world-space vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpBox wraps an axis-aligned bounding box so it can be returned from
// `box` and consumed by `grow`.
type sexpBox struct {
	box sdf.Box3
}

func (b *sexpBox) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(box (vec3 %.1f %.1f %.1f) (vec3 %.1f %.1f %.1f))",
		b.box.Min.X, b.box.Min.Y, b.box.Min.Z,
		b.box.Max.X, b.box.Max.Y, b.box.Max.Z)
}
func (b *sexpBox) Type() *zygo.RegisteredType { return nil }

// sexpPattern wraps a seed pattern so it can be passed from the seed
// constructors to `grow`.
type sexpPattern struct {
	pat seed.Pattern
}

func (p *sexpPattern) SexpString(ps *zygo.PrintState) string {
	switch p.pat.Kind {
	case seed.KindSlab:
		return fmt.Sprintf("(slab-seed :axis :%s :thickness %d)", p.pat.Axis, p.pat.Thickness)
	case seed.KindScattered:
		return fmt.Sprintf("(scattered-seed :count %d :rng-seed %d)", p.pat.Count, p.pat.RNGSeed)
	}
	return "(point-seed)"
}
func (p *sexpPattern) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a seed.Axis.
func toAxis(s zygo.Sexp) (seed.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return seed.AxisX, nil
	case "y":
		return seed.AxisY, nil
	case "z":
		return seed.AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toBox extracts a box from a sexpBox.
func toBox(s zygo.Sexp) (sdf.Box3, error) {
	if b, ok := s.(*sexpBox); ok {
		return b.box, nil
	}
	return sdf.Box3{}, fmt.Errorf("expected box, got %T (%s)", s, s.SexpString(nil))
}

// toPattern extracts a seed pattern from a sexpPattern.
func toPattern(s zygo.Sexp) (seed.Pattern, error) {
	if p, ok := s.(*sexpPattern); ok {
		return p.pat, nil
	}
	return seed.Pattern{}, fmt.Errorf("expected seed pattern, got %T (%s)", s, s.SexpString(nil))
}

// patternAlias resolves the named growth patterns to their seed shapes:
// mitosis divides a single center blob, coral branches off a thin slab,
// neural grows filaments between scattered points.
func patternAlias(name string) (seed.Pattern, bool) {
	switch name {
	case "mitosis":
		return seed.Point(), true
	case "coral":
		return seed.Slab(seed.AxisX, 2), true
	case "neural":
		return seed.Scattered(seed.DefaultScatterCount, 0), true
	}
	return seed.Pattern{}, false
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the growth DSL builtins into a zygomys
// environment. The `grow` builtin appends to jobs as the script runs.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable string
// literals.
func registerBuiltins(env *zygo.Zlisp, jobs *[]sim.Job) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (box (vec3 0 0 0) (vec3 2 2 2))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("box requires a min and a max vec3, got %d arguments", len(args))
		}

		min, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: min: %w", err)
		}
		max, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: max: %w", err)
		}

		return &sexpBox{box: sdf.Box3{Min: min, Max: max}}, nil
	})

	// -----------------------------------------------------------------------
	// (point-seed)
	// -----------------------------------------------------------------------
	env.AddFunction("point_seed", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("point-seed takes no arguments")
		}
		return &sexpPattern{pat: seed.Point()}, nil
	})

	// -----------------------------------------------------------------------
	// (slab-seed :axis :z :thickness 3)
	// -----------------------------------------------------------------------
	env.AddFunction("slab_seed", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		axis := seed.AxisZ
		thickness := 2

		if v, ok := pa.kw["axis"]; ok {
			a, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("slab-seed: axis: %w", err)
			}
			axis = a
		}
		if v, ok := pa.kw["thickness"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("slab-seed: thickness: %w", err)
			}
			if n < 1 {
				return zygo.SexpNull, fmt.Errorf("slab-seed: thickness %d, need at least 1", n)
			}
			thickness = n
		}

		return &sexpPattern{pat: seed.Slab(axis, thickness)}, nil
	})

	// -----------------------------------------------------------------------
	// (scattered-seed :count 10 :rng-seed 42)
	// -----------------------------------------------------------------------
	env.AddFunction("scattered_seed", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		count := seed.DefaultScatterCount
		var rngSeed int64

		if v, ok := pa.kw["count"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scattered-seed: count: %w", err)
			}
			if n < 1 {
				return zygo.SexpNull, fmt.Errorf("scattered-seed: count %d, need at least 1", n)
			}
			count = n
		}
		if v, ok := pa.kw["rng-seed"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scattered-seed: rng-seed: %w", err)
			}
			rngSeed = int64(n)
		}

		return &sexpPattern{pat: seed.Scattered(count, rngSeed)}, nil
	})

	// -----------------------------------------------------------------------
	// (grow "name"
	//   :bounds (box (vec3 0 0 0) (vec3 2 2 2))
	//   :resolution 50 :iterations 100
	//   :pattern :coral
	//   :feed-rate 0.037 :kill-rate 0.06
	//   :diffusion-a 0.2 :diffusion-b 0.1 :time-step 1.0
	//   :threshold 0.5
	//   :seed (scattered-seed :count 10 :rng-seed 7)
	//   :preview true)
	//
	// :pattern is shorthand for a named seed shape (mitosis, coral,
	// neural); an explicit :seed overrides it.
	// -----------------------------------------------------------------------
	env.AddFunction("grow", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("grow requires a name as first argument")
		}
		jobName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grow: name: %w", err)
		}
		if jobName == "" {
			return zygo.SexpNull, fmt.Errorf("grow: name must not be empty")
		}

		cfg := sim.Default()
		// Unit cube unless the script says otherwise.
		bounds := sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}

		if v, ok := pa.kw["bounds"]; ok {
			b, err := toBox(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: bounds: %w", err)
			}
			bounds = b
		}
		if v, ok := pa.kw["pattern"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: pattern: %w", err)
			}
			pat, ok := patternAlias(s)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("grow: unknown pattern %q, expected mitosis, coral, or neural", s)
			}
			cfg.Seed = pat
		}
		if v, ok := pa.kw["resolution"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: resolution: %w", err)
			}
			cfg.Resolution = n
		}
		if v, ok := pa.kw["iterations"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: iterations: %w", err)
			}
			cfg.Iterations = n
		}
		if v, ok := pa.kw["feed-rate"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: feed-rate: %w", err)
			}
			cfg.FeedRate = f
		}
		if v, ok := pa.kw["kill-rate"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: kill-rate: %w", err)
			}
			cfg.KillRate = f
		}
		if v, ok := pa.kw["diffusion-a"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: diffusion-a: %w", err)
			}
			cfg.DiffusionA = f
		}
		if v, ok := pa.kw["diffusion-b"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: diffusion-b: %w", err)
			}
			cfg.DiffusionB = f
		}
		if v, ok := pa.kw["time-step"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: time-step: %w", err)
			}
			cfg.TimeStep = f
		}
		if v, ok := pa.kw["threshold"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: threshold: %w", err)
			}
			cfg.Threshold = f
		}
		if v, ok := pa.kw["seed"]; ok {
			p, err := toPattern(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: seed: %w", err)
			}
			cfg.Seed = p
		}
		if v, ok := pa.kw["preview"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grow: preview: %w", err)
			}
			cfg.Preview = b
		}

		// Surface bad parameters at declaration time so the script error
		// points at the grow form, not at a later run.
		if err := cfg.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("grow %q: %w", jobName, err)
		}
		if _, err := sim.BoxTarget(bounds).Bounds(); err != nil {
			return zygo.SexpNull, fmt.Errorf("grow %q: bounds: %w", jobName, err)
		}

		*jobs = append(*jobs, sim.Job{
			Name:   jobName,
			Config: cfg,
			Bounds: bounds,
		})

		return &zygo.SexpStr{S: jobName}, nil
	})
}
