package dmn_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/matryer/is"

	"github.com/tablekit/dmn"
)

func namedDecision(t *testing.T, id string) *dmn.Decision {
	t.Helper()
	d, err := dmn.NewDecision(id, id, dmn.Unique,
		[]dmn.Input{{Name: "x", Type: dmn.String{}, Expression: dmn.NewLiteral(nil)}},
		[]dmn.Output{{Name: "out", Type: dmn.String{}}},
		nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestVault(t *testing.T) {
	is := is.New(t)

	v, err := dmn.NewVault(namedDecision(t, "b"), namedDecision(t, "a"))
	is.NoErr(err)
	is.Equal(v.IDs(), []string{"a", "b"})

	is.NoErr(v.Put(namedDecision(t, "c")))
	is.Equal(v.Len(), 3)

	replacement := namedDecision(t, "a")
	is.NoErr(v.Put(replacement))
	got, ok := v.Get("a")
	is.True(ok)
	is.True(got == replacement)

	is.NoErr(v.Delete("b"))
	_, ok = v.Get("b")
	is.True(!ok)

	err = v.Delete("b")
	is.True(errors.Is(err, dmn.ErrDecisionNotFound))

	is.NoErr(v.Replace(namedDecision(t, "z")))
	is.Equal(v.IDs(), []string{"z"})
}

func TestVaultRejects(t *testing.T) {
	is := is.New(t)

	_, err := dmn.NewVault(namedDecision(t, "a"), namedDecision(t, "a"))
	is.True(err != nil) // duplicate id

	v, err := dmn.NewVault()
	is.NoErr(err)
	is.True(v.Put(nil) != nil)

	err = v.ApplyMutations([]dmn.DecisionMutation{{ID: "a", Decision: namedDecision(t, "b")}})
	is.True(err != nil) // id mismatch

	err = v.ApplyMutations([]dmn.DecisionMutation{{Decision: namedDecision(t, "b")}})
	is.True(err != nil) // no id
}

// A failing mutation leaves the vault unchanged.
func TestVaultMutationsAtomic(t *testing.T) {
	is := is.New(t)

	v, err := dmn.NewVault(namedDecision(t, "a"))
	is.NoErr(err)

	err = v.ApplyMutations([]dmn.DecisionMutation{
		{ID: "b", Decision: namedDecision(t, "b")},
		{ID: "missing"},
	})
	is.True(errors.Is(err, dmn.ErrDecisionNotFound))
	is.Equal(v.IDs(), []string{"a"})
}

func TestVaultConcurrentWriters(t *testing.T) {
	is := is.New(t)

	v, err := dmn.NewVault()
	is.NoErr(err)

	decisions := make([]*dmn.Decision, 50)
	for i := range decisions {
		decisions[i] = namedDecision(t, fmt.Sprintf("d%02d", i))
	}

	var wg sync.WaitGroup
	for _, d := range decisions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := v.Put(d); err != nil {
				t.Errorf("put: %v", err)
			}
			if _, ok := v.Get(d.ID()); !ok {
				t.Errorf("decision %s not visible after put", d.ID())
			}
		}()
	}
	wg.Wait()
	is.Equal(v.Len(), 50)
}
