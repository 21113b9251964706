// pkg/tree/tree_test.go
package tree

import (
	"errors"
	"reflect"
	"testing"

	"configx/pkg/cfgerr"
	"configx/pkg/types"
)

func TestSetAndGetLeaf(t *testing.T) {
	tr := New()
	if _, err := tr.Set("app.ui.theme", "dark"); err != nil {
		t.Fatal(err)
	}

	got, err := tr.Get("app.ui.theme")
	if err != nil {
		t.Fatal(err)
	}
	if got != "dark" {
		t.Errorf("expected \"dark\", got %v", got)
	}
}

func TestSetReturnsStoredValue(t *testing.T) {
	tr := New()
	got, err := tr.Set("n", 7)
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(7) {
		t.Errorf("expected int64(7), got %v (%T)", got, got)
	}
}

func TestSetNullValue(t *testing.T) {
	tr := New()

	got, err := tr.Set("feature.flag", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil stored value, got %v", got)
	}

	// A null leaf reads back as nil, not as an empty interior node.
	v, err := tr.Get("feature.flag")
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("expected nil, got %v (%T)", v, v)
	}
}

func TestGetInteriorReturnsMap(t *testing.T) {
	tr := New()
	tr.Set("app.ui.theme", "dark")
	tr.Set("app.ui.fontSize", 14)

	got, err := tr.Get("app.ui")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{"theme": "dark", "fontSize": int64(14)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPathSplitting(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty", "", true},
		{"dot only", ".", true},
		{"whitespace only", "  ", true},
		{"double dot collapses", "a..b", false},
		{"outer whitespace trimmed", " a.b ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New()
			_, err := tr.Set(tc.path, 1)
			if tc.wantErr {
				if !errors.Is(err, cfgerr.ErrInvalidPath) {
					t.Errorf("expected ErrInvalidPath, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestDoubleDotAddressesSameNode(t *testing.T) {
	tr := New()
	tr.Set("a..b", 1)

	got, err := tr.Get("a.b")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(1) {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestGetMissingPath(t *testing.T) {
	tr := New()
	if _, err := tr.Get("missing.path"); !errors.Is(err, cfgerr.ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func TestSetOnInteriorNode(t *testing.T) {
	tr := New()
	tr.Set("a.b.c", 5)

	if _, err := tr.Set("a.b", 10); !errors.Is(err, cfgerr.ErrNodeStructure) {
		t.Errorf("expected ErrNodeStructure, got %v", err)
	}

	// The interior node must be untouched.
	got, err := tr.Get("a.b.c")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(5) {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestSetRejectsUnsupportedValue(t *testing.T) {
	tr := New()
	if _, err := tr.Set("a.b", []int{1}); !errors.Is(err, cfgerr.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}

	// Validation failed before the walk: no intermediates were created.
	if _, err := tr.Get("a"); !errors.Is(err, cfgerr.ErrPathNotFound) {
		t.Errorf("expected no intermediate nodes, got %v", err)
	}
}

func TestStrictModeBlocksAutoCreation(t *testing.T) {
	tr := New()
	tr.SetStrictMode(true)

	if _, err := tr.Set("a.b.c", 5); !errors.Is(err, cfgerr.ErrStrictMode) {
		t.Errorf("expected ErrStrictMode, got %v", err)
	}

	// Nothing may have been created.
	if len(tr.Root().Children()) != 0 {
		t.Error("strict mode set must not create nodes")
	}
}

func TestStrictModeAllowsOverwrite(t *testing.T) {
	tr := New()
	tr.Set("a.b", 1)
	tr.SetStrictMode(true)

	if _, err := tr.Set("a.b", 2); err != nil {
		t.Fatalf("overwriting an existing leaf must work in strict mode: %v", err)
	}
}

func TestDeleteLeaf(t *testing.T) {
	tr := New()
	tr.Set("app.ui.theme", "dark")

	ok, err := tr.Delete("app.ui.theme")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected delete to report removal")
	}

	got, err := tr.Get("app.ui")
	if err != nil {
		t.Fatal(err)
	}
	if m, isMap := got.(map[string]interface{}); !isMap || len(m) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestDeleteSubtree(t *testing.T) {
	tr := New()
	tr.Set("a.b.c", 1)
	tr.Set("a.b.d", 2)

	ok, err := tr.Delete("a.b")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected removal")
	}
	if _, err := tr.Get("a.b.c"); !errors.Is(err, cfgerr.ErrPathNotFound) {
		t.Error("expected subtree gone")
	}
}

func TestDeleteRoot(t *testing.T) {
	tr := New()
	if _, err := tr.Delete("root"); !errors.Is(err, cfgerr.ErrNodeStructure) {
		t.Errorf("expected ErrNodeStructure, got %v", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	tr := New()
	ok, err := tr.Delete("no.such.node")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected false for missing path")
	}
}

func TestToMapEmpty(t *testing.T) {
	tr := New()
	got := tr.ToMap()
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestToMap(t *testing.T) {
	tr := New()
	tr.Set("a.b.c", 10)

	want := map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{"c": int64(10)},
		},
	}
	if got := tr.ToMap(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLoadMap(t *testing.T) {
	tr := New()
	tr.Set("old", 1)

	err := tr.LoadMap(map[string]interface{}{
		"app": map[string]interface{}{"title": "MyApp"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := tr.Get("app.title")
	if err != nil {
		t.Fatal(err)
	}
	if got != "MyApp" {
		t.Errorf("expected MyApp, got %v", got)
	}

	// The previous contents are gone.
	if _, err := tr.Get("old"); !errors.Is(err, cfgerr.ErrPathNotFound) {
		t.Error("expected LoadMap to replace existing state")
	}
}

func TestLoadMapRejectsNil(t *testing.T) {
	tr := New()
	if err := tr.LoadMap(nil); !errors.Is(err, cfgerr.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoadMapRejectsUnsupportedValues(t *testing.T) {
	tr := New()
	err := tr.LoadMap(map[string]interface{}{"x": make(chan int)})
	if !errors.Is(err, cfgerr.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

// recordingHooks captures hook invocations for ordering assertions.
type recordingHooks struct {
	sets    []string
	deletes []string
	fail    error
}

func (h *recordingHooks) BeforeSet(path string, value types.Value) error {
	if h.fail != nil {
		return h.fail
	}
	h.sets = append(h.sets, path)
	return nil
}

func (h *recordingHooks) BeforeDelete(path string) error {
	if h.fail != nil {
		return h.fail
	}
	h.deletes = append(h.deletes, path)
	return nil
}

func TestHooksFireOnMutation(t *testing.T) {
	hooks := &recordingHooks{}
	tr := New()
	tr.AttachHooks(hooks)

	tr.Set("a.b", 1)
	tr.Delete("a.b")

	if len(hooks.sets) != 1 || hooks.sets[0] != "a.b" {
		t.Errorf("expected one set hook for a.b, got %v", hooks.sets)
	}
	if len(hooks.deletes) != 1 || hooks.deletes[0] != "a.b" {
		t.Errorf("expected one delete hook for a.b, got %v", hooks.deletes)
	}
}

func TestHooksSkippedOnFailedMutation(t *testing.T) {
	hooks := &recordingHooks{}
	tr := New()
	tr.AttachHooks(hooks)

	tr.Set("a.b", 1)
	hooks.sets = nil

	if _, err := tr.Set("a", 2); !errors.Is(err, cfgerr.ErrNodeStructure) {
		t.Fatalf("expected ErrNodeStructure, got %v", err)
	}
	if len(hooks.sets) != 0 {
		t.Error("failed set must not reach the hooks")
	}

	if ok, _ := tr.Delete("missing"); ok {
		t.Fatal("unexpected removal")
	}
	if len(hooks.deletes) != 0 {
		t.Error("no-op delete must not reach the hooks")
	}
}

func TestHookErrorAbortsMutation(t *testing.T) {
	hooks := &recordingHooks{fail: errors.New("disk full")}
	tr := New()
	tr.AttachHooks(hooks)

	if _, err := tr.Set("a.b", 1); err == nil {
		t.Fatal("expected hook error to propagate")
	}
	// The walk may have created the node, but no value was assigned.
	got, err := tr.Get("a.b")
	if err != nil {
		t.Fatal(err)
	}
	if m, isMap := got.(map[string]interface{}); !isMap || len(m) != 0 {
		t.Errorf("aborted set must not assign a value, got %v", got)
	}
}

func TestApplySetSuppressesHooks(t *testing.T) {
	hooks := &recordingHooks{}
	tr := New()
	tr.AttachHooks(hooks)

	if _, err := tr.ApplySet("a.b", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.ApplyDelete("a.b"); err != nil {
		t.Fatal(err)
	}

	if len(hooks.sets) != 0 || len(hooks.deletes) != 0 {
		t.Error("Apply* must not invoke hooks")
	}
}
