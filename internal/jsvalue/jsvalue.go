// Package jsvalue converts between [structpb.Value], the structured clone
// representation used on the wire, and [goja.Value].
package jsvalue

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"

	"github.com/dop251/goja"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrUncloneable is returned by [FromGoja] for values that have no
// structured representation, e.g. functions, symbols, or cyclic objects.
var ErrUncloneable = errors.New("jsvalue: value could not be cloned")

const (
	// maxDepth bounds the nesting of converted values.
	maxDepth = 1000
	// maxElements bounds the length of a converted array.
	maxElements = 1 << 20
)

var proxyType = reflect.TypeOf(goja.Proxy{})

// ToGoja converts v into a new JS value owned by rt. A nil v converts to
// null. Object keys are assigned in sorted order.
func ToGoja(rt *goja.Runtime, v *structpb.Value) (goja.Value, error) {
	return toGoja(rt, v, 0)
}

func toGoja(rt *goja.Runtime, v *structpb.Value, depth int) (goja.Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("jsvalue: maximum depth %d exceeded", maxDepth)
	}
	switch kind := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return goja.Null(), nil

	case *structpb.Value_BoolValue:
		return rt.ToValue(kind.BoolValue), nil

	case *structpb.Value_NumberValue:
		return rt.ToValue(kind.NumberValue), nil

	case *structpb.Value_StringValue:
		return rt.ToValue(kind.StringValue), nil

	case *structpb.Value_ListValue:
		values := kind.ListValue.GetValues()
		items := make([]any, len(values))
		for i, item := range values {
			val, err := toGoja(rt, item, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return rt.NewArray(items...), nil

	case *structpb.Value_StructValue:
		fields := kind.StructValue.GetFields()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		obj := rt.NewObject()
		for _, k := range keys {
			val, err := toGoja(rt, fields[k], depth+1)
			if err != nil {
				return nil, err
			}
			if err := obj.Set(k, val); err != nil {
				return nil, err
			}
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("jsvalue: unsupported kind %T", kind)
	}
}

// FromGoja converts a JS value into a [structpb.Value]. undefined and null
// both convert to null. Object properties with undefined values are
// omitted, and in arrays become null, matching JSON.stringify.
//
// Only arrays, primitive wrappers, and plain objects (whose prototype is
// Object.prototype or null) are accepted. Anything else, including Map,
// Set, Promise, typed arrays, class instances and proxies, is
// [ErrUncloneable].
func FromGoja(rt *goja.Runtime, v goja.Value) (*structpb.Value, error) {
	c := converter{
		rt:          rt,
		seen:        make(map[*goja.Object]struct{}),
		objectProto: rt.NewObject().Prototype(),
	}
	return c.fromGoja(v, 0)
}

type converter struct {
	rt          *goja.Runtime
	seen        map[*goja.Object]struct{}
	objectProto *goja.Object
}

func (c *converter) fromGoja(v goja.Value, depth int) (*structpb.Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("jsvalue: maximum depth %d exceeded", maxDepth)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return structpb.NewNullValue(), nil
	}

	if _, ok := v.(*goja.Symbol); ok {
		return nil, fmt.Errorf("%w: symbol", ErrUncloneable)
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return c.primitive(v)
	}
	if _, ok := goja.AssertFunction(obj); ok {
		return nil, fmt.Errorf("%w: function", ErrUncloneable)
	}
	if _, ok := c.seen[obj]; ok {
		return nil, fmt.Errorf("%w: cyclic reference", ErrUncloneable)
	}
	c.seen[obj] = struct{}{}
	defer delete(c.seen, obj)

	if obj.ExportType() == proxyType {
		return nil, fmt.Errorf("%w: proxy", ErrUncloneable)
	}

	switch obj.ClassName() {
	case `Array`:
		return c.array(obj, depth)
	case `Object`:
		if proto := obj.Prototype(); proto != nil && proto != c.objectProto {
			return nil, fmt.Errorf("%w: non-plain object", ErrUncloneable)
		}
		return c.object(obj, depth)
	case `Number`, `String`, `Boolean`:
		return c.primitive(obj.Export())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUncloneable, obj.ClassName())
	}
}

func (c *converter) primitive(v any) (*structpb.Value, error) {
	if val, ok := v.(goja.Value); ok {
		v = val.Export()
	}
	switch v := v.(type) {
	case bool:
		return structpb.NewBoolValue(v), nil
	case int64:
		return structpb.NewNumberValue(float64(v)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			// JSON has no representation for these
			return structpb.NewNullValue(), nil
		}
		return structpb.NewNumberValue(v), nil
	case string:
		return structpb.NewStringValue(v), nil
	case *big.Int:
		return nil, fmt.Errorf("%w: bigint", ErrUncloneable)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUncloneable, v)
	}
}

func (c *converter) array(obj *goja.Object, depth int) (*structpb.Value, error) {
	n := obj.Get(`length`).ToInteger()
	if n > maxElements {
		return nil, fmt.Errorf("jsvalue: array length %d exceeds %d", n, maxElements)
	}
	values := make([]*structpb.Value, 0, n)
	for i := range n {
		val, err := c.fromGoja(obj.Get(strconv.FormatInt(i, 10)), depth+1)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		values = append(values, val)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
}

func (c *converter) object(obj *goja.Object, depth int) (*structpb.Value, error) {
	keys := obj.Keys()
	fields := make(map[string]*structpb.Value, len(keys))
	for _, k := range keys {
		prop := obj.Get(k)
		if prop == nil || goja.IsUndefined(prop) {
			continue
		}
		val, err := c.fromGoja(prop, depth+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		fields[k] = val
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
}
