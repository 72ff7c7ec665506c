package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process DocumentStore for tests and local runs. Struct
// fields tagged `firestore:",serverTimestamp"` are stamped on write, like
// Firestore does.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*memCollection
	now         func() time.Time
	seq         int64

	// AppendHook, when set, runs before every append; a non-nil error
	// aborts that append.
	AppendHook func(collectionPath string, data any) error
}

type memCollection struct {
	order []string
	docs  map[string]any
}

// NewMemory returns an empty store whose server timestamps strictly increase.
func NewMemory() *Memory {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &Memory{collections: make(map[string]*memCollection)}
	m.now = func() time.Time {
		m.seq++
		return base.Add(time.Duration(m.seq) * time.Millisecond)
	}
	return m
}

func (m *Memory) collection(path string) *memCollection {
	c, ok := m.collections[path]
	if !ok {
		c = &memCollection{docs: make(map[string]any)}
		m.collections[path] = c
	}
	return c
}

func (m *Memory) put(path, id string, data any) {
	c := m.collection(path)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = stampServerTimestamps(data, m.now())
}

func (m *Memory) WriteDocument(ctx context.Context, collectionPath, id string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collectionPath, id, data)
	return nil
}

func (m *Memory) ReadDocument(ctx context.Context, collectionPath, id string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collectionPath]
	if !ok {
		return false, nil
	}
	v, ok := c.docs[id]
	if !ok {
		return false, nil
	}
	if err := assign(dst, v); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) AppendDocument(ctx context.Context, collectionPath string, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.AppendHook != nil {
		if err := m.AppendHook(collectionPath, data); err != nil {
			return "", fmt.Errorf("failed to append to %s: %w", collectionPath, err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.put(collectionPath, id, data)
	return id, nil
}

func (m *Memory) QueryOrdered(ctx context.Context, collectionPath, field string, dir Direction, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collectionPath]
	if !ok {
		return nil, nil
	}

	ids := append([]string(nil), c.order...)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := fieldValue(c.docs[ids[i]], field), fieldValue(c.docs[ids[j]], field)
		if dir == Desc {
			return lessValue(b, a)
		}
		return lessValue(a, b)
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		v := c.docs[id]
		docs = append(docs, NewDocument(id, func(dst any) error { return assign(dst, v) }))
	}
	return docs, nil
}

// Collection returns the documents of a collection in insertion order.
func (m *Memory) Collection(collectionPath string) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collectionPath]
	if !ok {
		return nil
	}
	out := make([]any, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out
}

// assign copies src into the value dst points to.
func assign(dst, src any) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dst)
	}
	sv := reflect.ValueOf(src)
	if sv.Kind() == reflect.Pointer {
		sv = sv.Elem()
	}
	if !sv.Type().AssignableTo(dv.Elem().Type()) {
		return fmt.Errorf("cannot decode %s into %s", sv.Type(), dv.Elem().Type())
	}
	dv.Elem().Set(sv)
	return nil
}

// stampServerTimestamps returns a copy of data with zero serverTimestamp
// fields set to now. Non-struct values are returned unchanged.
func stampServerTimestamps(data any, now time.Time) any {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return data
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("firestore")
		if !strings.Contains(tag, "serverTimestamp") {
			continue
		}
		f := cp.Field(i)
		if ts, ok := f.Interface().(time.Time); ok && ts.IsZero() && f.CanSet() {
			f.Set(reflect.ValueOf(now))
		}
	}
	return cp.Interface()
}

// fieldValue looks up a field by its firestore name in a struct or map.
func fieldValue(doc any, name string) any {
	if m, ok := doc.(map[string]any); ok {
		return m[name]
	}
	v := reflect.ValueOf(doc)
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("firestore"), ",")[0]
		if tag == name || (tag == "" && t.Field(i).Name == name) {
			return v.Field(i).Interface()
		}
	}
	return nil
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	}
	return false
}
