package content

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/mathlearn/internal/curriculum"
)

func newTestFactory(seed uint64) *TemplateFactory {
	return NewTemplateFactory(DefaultCatalogue(), &LocalSequence{}, rand.New(rand.NewPCG(seed, seed)))
}

func TestDefaultCatalogueCoversCurriculum(t *testing.T) {
	g, err := curriculum.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	c := DefaultCatalogue()
	for _, tp := range g.Topics() {
		for d := MinDifficulty; d <= MaxDifficulty; d++ {
			tmpl, ok := c.Template(tp.ID, d)
			if !ok {
				t.Fatalf("no template for %s", tp.ID)
			}
			if tmpl.Statement == "" || tmpl.TestCount < 1 {
				t.Errorf("%s/%d: incomplete template %+v", tp.ID, d, tmpl)
			}
			if _, err := curriculum.ParseComplexity(string(tmpl.ExpectedComplexity)); err != nil {
				t.Errorf("%s/%d: %v", tp.ID, d, err)
			}
		}
	}
}

func TestCatalogueTemplateSelection(t *testing.T) {
	c := DefaultCatalogue()
	tests := []struct {
		difficulty int
		want       int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 3},
	}
	for _, tt := range tests {
		got, _ := c.Template("arithmetic", tt.difficulty)
		if got.Difficulty != tt.want {
			t.Errorf("Template(arithmetic, %d).Difficulty = %d, want %d", tt.difficulty, got.Difficulty, tt.want)
		}
	}
	if _, ok := c.Template("alchemy", 1); ok {
		t.Error("Template(unknown) = ok")
	}
}

func TestGenerateItemsExactCount(t *testing.T) {
	f := newTestFactory(1)
	ctx := context.Background()

	for _, count := range []int{0, 1, 3, 7} {
		items, err := f.GenerateItems(ctx, "calculus", count, DifficultyRange{Min: 1, Max: 3})
		if err != nil {
			t.Fatalf("GenerateItems(%d): %v", count, err)
		}
		if len(items) != count {
			t.Errorf("GenerateItems(%d) returned %d items", count, len(items))
		}
		for _, it := range items {
			if it.TopicID != "calculus" {
				t.Errorf("item topic = %q", it.TopicID)
			}
			if it.Difficulty < 1 || it.Difficulty > 3 {
				t.Errorf("item difficulty %d outside 1-3", it.Difficulty)
			}
		}
	}
}

func TestGenerateItemsIDs(t *testing.T) {
	f := newTestFactory(1)
	ctx := context.Background()

	a, err := f.GenerateItems(ctx, "arithmetic", 2, DifficultyRange{Min: 1, Max: 1})
	if err != nil {
		t.Fatalf("GenerateItems: %v", err)
	}
	b, err := f.GenerateItems(ctx, "number_theory", 1, DifficultyRange{Min: 2, Max: 2})
	if err != nil {
		t.Fatalf("GenerateItems: %v", err)
	}

	var got []string
	for _, it := range append(a, b...) {
		got = append(got, it.ID)
	}
	if diff := cmp.Diff([]string{"arith_1", "arith_2", "numth_3"}, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateItemsDeterministicWithSeed(t *testing.T) {
	ctx := context.Background()
	r := DifficultyRange{Min: 1, Max: 4}

	a, err := newTestFactory(42).GenerateItems(ctx, "linear_algebra", 10, r)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newTestFactory(42).GenerateItems(ctx, "linear_algebra", 10, r)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different items (-a +b):\n%s", diff)
	}
}

func TestGenerateItemsErrors(t *testing.T) {
	f := newTestFactory(1)
	ctx := context.Background()

	if _, err := f.GenerateItems(ctx, "alchemy", 1, DifficultyRange{Min: 1, Max: 2}); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("unknown topic err = %v, want ErrUnknownTopic", err)
	}

	for _, r := range []DifficultyRange{{0, 2}, {3, 2}, {1, 5}} {
		if _, err := f.GenerateItems(ctx, "arithmetic", 1, r); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("range %v err = %v, want ErrInvalidRange", r, err)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := f.GenerateItems(cancelled, "arithmetic", 2, DifficultyRange{Min: 1, Max: 2}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled err = %v, want context.Canceled", err)
	}
}

func TestGenerateItemsTopicWithoutTemplates(t *testing.T) {
	c := NewCatalogue()
	c.Add("sorting", "sort")
	seq := &LocalSequence{}
	f := NewTemplateFactory(c, seq, rand.New(rand.NewPCG(1, 1)))

	items, err := f.GenerateItems(context.Background(), "sorting", 2, DifficultyRange{Min: 1, Max: 2})
	if !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("err = %v, want ErrUnknownTopic", err)
	}
	if items != nil {
		t.Errorf("items = %v, want none", items)
	}
	if n, _ := seq.Next(context.Background()); n != 1 {
		t.Errorf("first id after the failure = %d, want 1", n)
	}
}

func TestGenerateItemsConcurrentIDsUnique(t *testing.T) {
	f := newTestFactory(3)
	ctx := context.Background()
	idPattern := regexp.MustCompile(`^[a-z]+_\d+$`)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := f.GenerateItems(ctx, "graph_theory", 25, DifficultyRange{Min: 1, Max: 4})
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, it := range items {
				if ids[it.ID] {
					t.Errorf("duplicate id %s", it.ID)
				}
				if !idPattern.MatchString(it.ID) {
					t.Errorf("malformed id %s", it.ID)
				}
				ids[it.ID] = true
			}
		}()
	}
	wg.Wait()

	if len(ids) != 16*25 {
		t.Errorf("got %d unique ids, want %d", len(ids), 16*25)
	}
}

func TestDiagnosticSet(t *testing.T) {
	f := newTestFactory(1)

	items, err := DiagnosticSet(context.Background(), f, []string{"arithmetic", "alchemy", "calculus"})
	if err != nil {
		t.Fatalf("DiagnosticSet: %v", err)
	}

	type key struct {
		topic      string
		difficulty int
	}
	var got []key
	for _, it := range items {
		got = append(got, key{it.TopicID, it.Difficulty})
	}
	want := []key{{"arithmetic", 1}, {"arithmetic", 2}, {"calculus", 1}, {"calculus", 2}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(key{})); diff != "" {
		t.Errorf("diagnostic set mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnosticSetPropagatesFactoryErrors(t *testing.T) {
	boom := errors.New("boom")
	f := FactoryFunc(func(context.Context, string, int, DifficultyRange) ([]WorkItem, error) {
		return nil, boom
	})
	if _, err := DiagnosticSet(context.Background(), f, []string{"arithmetic"}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
