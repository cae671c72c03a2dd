package logctx

import (
	"context"
	"reflect"
	"smcp/internal/global"
	"sync"
	"testing"
)

func TestTagOperations(t *testing.T) {
	base := context.WithValue(context.Background(), global.LogTagsKey, []string{"a", "b"})

	tests := []struct {
		name string
		ctx  context.Context
		want []string
	}{
		{"no value in context", context.Background(), []string{}},
		{"wrong type stored", context.WithValue(context.Background(), global.LogTagsKey, "nope"), []string{}},
		{"stored list", base, []string{"a", "b"}},
		{"append", AppendCtxTag(base, "c"), []string{"a", "b", "c"}},
		{"append to empty", AppendCtxTag(context.Background(), "x"), []string{"x"}},
		{"remove last", RemoveLastCtxTag(base), []string{"a"}},
		{"remove from empty", RemoveLastCtxTag(context.Background()), []string{}},
		{"overwrite", OverwriteCtxTag(base, []string{"z"}), []string{"z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetTagList(tt.ctx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("tags mismatch: got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestTagsCopyOnWrite(t *testing.T) {
	parent := AppendCtxTag(context.Background(), "parent")

	childA := AppendCtxTag(parent, "a")
	childB := AppendCtxTag(parent, "b")

	if got := GetTagList(parent); !reflect.DeepEqual(got, []string{"parent"}) {
		t.Fatalf("parent mutated: %v", got)
	}
	if got := GetTagList(childA); !reflect.DeepEqual(got, []string{"parent", "a"}) {
		t.Fatalf("child a wrong: %v", got)
	}
	if got := GetTagList(childB); !reflect.DeepEqual(got, []string{"parent", "b"}) {
		t.Fatalf("child b wrong: %v", got)
	}

	list := []string{"x", "y"}
	overwritten := OverwriteCtxTag(parent, list)
	list[0] = "changed"
	if got := GetTagList(overwritten); got[0] != "x" {
		t.Fatalf("overwrite kept reference to caller slice: %v", got)
	}
}

func TestTagsConcurrentAppend(t *testing.T) {
	parent := AppendCtxTag(context.Background(), "root")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := AppendCtxTag(parent, "worker")
			if len(GetTagList(child)) != 2 {
				t.Errorf("unexpected child tags %v", GetTagList(child))
			}
		}()
	}
	wg.Wait()

	if got := GetTagList(parent); len(got) != 1 {
		t.Fatalf("parent changed under concurrency: %v", got)
	}
}
