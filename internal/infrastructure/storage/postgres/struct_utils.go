package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns extracts all column names from struct "db" tags,
// descending into embedded structs such as entity.BaseDocument.
// Called once per repository at construction time.
//
//	columns := ExtractDBColumns[order.Order]()
//	// ["id", "version", "created_at", "updated_at", "seller_id", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return fieldsOf(reflect.TypeOf(zero)).columns()
}

type fieldInfo struct {
	index []int
	dbTag string
}

type typeFields []fieldInfo

func (f typeFields) columns() []string {
	cols := make([]string, len(f))
	for i, fi := range f {
		cols[i] = fi.dbTag
	}
	return cols
}

// typeCache holds the flattened field list per struct type.
var typeCache sync.Map // map[reflect.Type]typeFields

func fieldsOf(t reflect.Type) typeFields {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(typeFields)
	}

	var fields typeFields
	if t.Kind() == reflect.Struct {
		collectFields(t, nil, &fields)
	}
	typeCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int, out *typeFields) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, out)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		*out = append(*out, fieldInfo{index: index, dbTag: tag})
	}
}

// StructToMap converts a struct to a column→value map using "db" tags.
// Fields without a tag, or tagged "-", are skipped.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	fields := fieldsOf(rv.Type())
	res := make(map[string]any, len(fields))
	for _, fi := range fields {
		res[fi.dbTag] = rv.FieldByIndex(fi.index).Interface()
	}
	return res
}

// PickColumns returns the entries of data named in cols, skipping those in exclude.
func PickColumns(data map[string]any, cols []string, exclude ...string) map[string]any {
	skip := make(map[string]struct{}, len(exclude))
	for _, c := range exclude {
		skip[c] = struct{}{}
	}
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		if _, ok := skip[c]; ok {
			continue
		}
		if val, ok := data[c]; ok {
			out[c] = val
		}
	}
	return out
}
