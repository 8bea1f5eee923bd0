package qdrant

import (
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"github.com/valyala/fastjson"

	"github.com/poiesic/logscope/core"
)

// Reserved payload keys holding filter mirrors of the document fields.
const (
	textMirror  = "_txt"
	lowerMirror = "_lc"
)

func textKey(path string) string  { return textMirror + "." + path }
func lowerKey(path string) string { return lowerMirror + "." + path }

// toPayload converts a document body into a point payload with its
// filter mirrors.
func toPayload(doc *core.Document) (map[string]*qdrant.Value, error) {
	v, err := doc.Value()
	if err != nil {
		return nil, err
	}
	obj, err := v.Object()
	if err != nil {
		return nil, err
	}

	payload := make(map[string]*qdrant.Value, obj.Len()+2)
	txt := make(map[string]*qdrant.Value)
	lc := make(map[string]*qdrant.Value)
	obj.Visit(func(key []byte, val *fastjson.Value) {
		k := string(key)
		if k == textMirror || k == lowerMirror {
			return
		}
		payload[k] = jsonToValue(val)
		mirrorLeaves([]string{k}, val, txt, lc)
	})
	payload[textMirror] = qdrant.NewValueFromFields(txt)
	payload[lowerMirror] = qdrant.NewValueFromFields(lc)
	return payload, nil
}

// mirrorLeaves records the rendered text of every scalar under path.
func mirrorLeaves(path []string, v *fastjson.Value, txt, lc map[string]*qdrant.Value) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		o.Visit(func(key []byte, child *fastjson.Value) {
			mirrorLeaves(append(path[:len(path):len(path)], string(key)), child, txt, lc)
		})
	case fastjson.TypeArray, fastjson.TypeNull:
	default:
		text := core.ValueText(v)
		setNested(txt, path, qdrant.NewValueString(text))
		setNested(lc, path, qdrant.NewValueString(strings.ToLower(text)))
	}
}

func setNested(root map[string]*qdrant.Value, path []string, val *qdrant.Value) {
	m := root
	for _, seg := range path[:len(path)-1] {
		child, ok := m[seg]
		if !ok || child.GetStructValue() == nil {
			child = qdrant.NewValueFromFields(make(map[string]*qdrant.Value))
			m[seg] = child
		}
		m = child.GetStructValue().GetFields()
	}
	m[path[len(path)-1]] = val
}

func jsonToValue(v *fastjson.Value) *qdrant.Value {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		fields := make(map[string]*qdrant.Value, o.Len())
		o.Visit(func(key []byte, child *fastjson.Value) {
			fields[string(key)] = jsonToValue(child)
		})
		return qdrant.NewValueFromFields(fields)
	case fastjson.TypeArray:
		arr, _ := v.Array()
		values := make([]*qdrant.Value, 0, len(arr))
		for _, item := range arr {
			values = append(values, jsonToValue(item))
		}
		return qdrant.NewValueFromList(values...)
	case fastjson.TypeString:
		return qdrant.NewValueString(string(v.GetStringBytes()))
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return qdrant.NewValueInt(i)
		}
		return qdrant.NewValueDouble(v.GetFloat64())
	case fastjson.TypeTrue:
		return qdrant.NewValueBool(true)
	case fastjson.TypeFalse:
		return qdrant.NewValueBool(false)
	default:
		return qdrant.NewValueNull()
	}
}

// fromPayload renders a point payload back into a JSON document body,
// dropping the filter mirrors.
func fromPayload(payload map[string]*qdrant.Value) []byte {
	var arena fastjson.Arena
	out := arena.NewObject()
	for key, val := range payload {
		if key == textMirror || key == lowerMirror {
			continue
		}
		out.Set(key, valueToJSON(&arena, val))
	}
	return out.MarshalTo(nil)
}

func valueToJSON(a *fastjson.Arena, v *qdrant.Value) *fastjson.Value {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return a.NewString(kind.StringValue)
	case *qdrant.Value_IntegerValue:
		return a.NewNumberInt(int(kind.IntegerValue))
	case *qdrant.Value_DoubleValue:
		return a.NewNumberFloat64(kind.DoubleValue)
	case *qdrant.Value_BoolValue:
		if kind.BoolValue {
			return a.NewTrue()
		}
		return a.NewFalse()
	case *qdrant.Value_StructValue:
		obj := a.NewObject()
		for key, child := range kind.StructValue.GetFields() {
			obj.Set(key, valueToJSON(a, child))
		}
		return obj
	case *qdrant.Value_ListValue:
		arr := a.NewArray()
		for i, child := range kind.ListValue.GetValues() {
			arr.SetArrayItem(i, valueToJSON(a, child))
		}
		return arr
	default:
		return a.NewNull()
	}
}

// pointVector extracts the named embedding from a retrieved point.
func pointVector(vectors *qdrant.VectorsOutput) []float32 {
	named := vectors.GetVectors().GetVectors()
	out, ok := named[vectorName]
	if !ok {
		return nil
	}
	if dense := out.GetDense(); dense != nil {
		return dense.GetData()
	}
	return out.GetData()
}

func pointID(id *qdrant.PointId) core.ID {
	return core.ID(id.GetNum())
}
