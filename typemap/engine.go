package typemap

import (
	"strings"
	"sync"

	"github.com/fluxforge/fluxforge/fferr"
	"github.com/fluxforge/fluxforge/schema"
)

// Mapping is the outcome of mapping one source ColumnType into a target
// dialect: the resolved type, and whether the mapping is lossy (spec
// §4.3's "mapping_lossy" condition — e.g. DECIMAL precision truncated,
// unsigned width narrowed, SET collapsed to TEXT).
type Mapping struct {
	Type   schema.ColumnType
	Lossy  bool
	Reason string // human-readable cause, set only when Lossy
}

// Engine evaluates spec §4.3's pipeline:
//
//	S.rules.on_read -> S.types.on_read -> (IR) -> T.types.on_write -> T.rules.on_write
//
// Results are memoized per (source dialect, target dialect, base type,
// params) since the pipeline is pure given a fixed Policy.
type Engine struct {
	policy Policy

	mu    sync.Mutex
	cache map[cacheKey]Mapping
}

// cacheKey must cover every field of the input ColumnType the mapping
// functions read, not just the ones that happen to vary in common cases:
// two columns sharing (base, length, precision, scale, unsigned) can still
// differ in nullability or (for ENUM) label set, and both are carried
// straight through into the resolved Mapping's Type (spec §4.3: "memoizes
// per (dialect, direction, base, params)" — params includes enum_values).
type cacheKey struct {
	source, target schema.Dialect
	base           schema.BaseType
	length         int
	precision      int
	scale          int
	unsigned       bool
	nullable       bool
	enumValues     string
	arrayElem      schema.BaseType
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy, cache: make(map[cacheKey]Mapping)}
}

// Map resolves a source ColumnType to its target representation. A mapping
// that would be lossy returns fferr.ErrMappingLossy unless the Policy has
// AllowLossy set; one with no applicable rule at all returns
// fferr.ErrMappingMissing.
func (e *Engine) Map(source, target schema.Dialect, ct schema.ColumnType) (Mapping, error) {
	key := cacheKey{
		source: source, target: target, base: ct.Base,
		length:     intOr(ct.Params.Length, -1),
		precision:  intOr(ct.Params.Precision, -1),
		scale:      intOr(ct.Params.Scale, -1),
		unsigned:   ct.Unsigned,
		nullable:   ct.Nullable,
		enumValues: strings.Join(ct.Params.EnumValues, "\x00"),
		arrayElem:  arrayElemOr(ct.Params.ArrayElem, ""),
	}
	if m, ok := e.lookup(key); ok {
		return m, nil
	}

	m, err := e.evaluate(source, target, ct)
	if err != nil {
		return Mapping{}, err
	}
	e.store(key, m)
	return m, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func arrayElemOr(p *schema.BaseType, def schema.BaseType) schema.BaseType {
	if p == nil {
		return def
	}
	return *p
}

func (e *Engine) evaluate(source, target schema.Dialect, ct schema.ColumnType) (Mapping, error) {
	normalized := e.applyReadRules(source, ct)

	result, overridden := e.applyWriteTokenOverride(target, normalized)

	lossy := false
	reason := ""

	if !overridden {
		mapped, ok, l, r := defaultBaseMapping(source, target, normalized)
		if !ok {
			return Mapping{}, fferr.Wrap(fferr.ErrMappingMissing,
				"no mapping from %s %s to %s", source, normalized.Base, target)
		}
		result = mapped
		lossy = l
		reason = r
	}

	result, rLossy, rReason := e.applyWriteRules(target, result)
	if rLossy {
		lossy = true
		if reason == "" {
			reason = rReason
		}
	}

	if lossy && !e.policy.AllowLossy {
		return Mapping{}, fferr.Wrap(fferr.ErrMappingLossy, "%s", reason)
	}

	return Mapping{Type: result, Lossy: lossy, Reason: reason}, nil
}

// applyReadRules re-applies any S.types.on_read BaseType-keyed override.
// The raw-DB-type-string -> BaseType decoding itself happens in the
// dialect driver during introspection, before a ColumnType ever reaches the
// Engine; this stage exists so a read-side override table keyed by the
// already-decoded BaseType still takes effect (e.g. forcing mediumint to be
// treated as int upstream of mapping).
func (e *Engine) applyReadRules(source schema.Dialect, ct schema.ColumnType) schema.ColumnType {
	pol := e.policy.forDialect(source)
	if tok, ok := pol.TypesOnRead[string(ct.Base)]; ok {
		ct.Base = schema.BaseType(tok)
	}
	return ct
}

// applyWriteTokenOverride honors an explicit T.types.on_write BaseType
// token override, which wins outright over the bundled default mapping.
func (e *Engine) applyWriteTokenOverride(target schema.Dialect, ct schema.ColumnType) (schema.ColumnType, bool) {
	pol := e.policy.forDialect(target)
	tok, ok := pol.TypesOnWrite[string(ct.Base)]
	if !ok {
		return ct, false
	}
	ct.Base = schema.BaseType(tok)
	return ct, true
}

// applyWriteRules applies T.rules.on_write flags (enum_as/set_as) on top of
// whichever mapping was chosen above.
func (e *Engine) applyWriteRules(target schema.Dialect, ct schema.ColumnType) (schema.ColumnType, bool, string) {
	pol := e.policy.forDialect(target)

	switch ct.Base {
	case schema.BaseEnum:
		switch pol.RulesOnWrite.EnumAs {
		case EnumAsText:
			return schema.ColumnType{Base: schema.BaseText, Nullable: ct.Nullable}, true,
				"enum rendered as plain text; label set enforced only at the application layer"
		case EnumAsCheck:
			return schema.ColumnType{Base: schema.BaseVarchar, Params: schema.TypeParams{Length: intp(255)}, Nullable: ct.Nullable}, true,
				"enum rendered as varchar+check; label set enforced only at the application layer"
		default:
			return ct, false, ""
		}
	case schema.BaseSet:
		if pol.RulesOnWrite.SetAs == SetAsCSVText {
			return schema.ColumnType{Base: schema.BaseText, Nullable: ct.Nullable}, true,
				"set rendered as comma-joined text; no per-element constraint"
		}
		return ct, false, ""
	default:
		return ct, false, ""
	}
}

func intp(i int) *int { return &i }

func (e *Engine) store(key cacheKey, m Mapping) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = m
}

func (e *Engine) lookup(key cacheKey) (Mapping, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.cache[key]
	return m, ok
}
