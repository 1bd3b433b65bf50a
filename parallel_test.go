package dmn_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/tablekit/dmn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Many goroutines evaluate the same decision with different variables.
func TestParallelEvaluation(t *testing.T) {
	e := dmn.NewEvaluator()

	inputs := []dmn.Input{{Name: "tier", Type: dmn.String{}, Expression: dmn.NewLiteral("bronze")}}
	outputs := []dmn.Output{{Name: "tier", Type: dmn.String{}}}
	tiers := []string{"bronze", "silver", "gold", "platinum"}
	rules := []dmn.Rule{}
	for _, tier := range tiers {
		rules = append(rules, dmn.Rule{
			ID:            tier,
			InputEntries:  []*dmn.InputEntry{{Expression: dmn.NewLiteral(tier)}},
			OutputEntries: []dmn.OutputEntry{then(tier)},
		})
	}
	d, err := dmn.NewDecision("tiers", "", dmn.Unique, inputs, outputs, rules)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tier := tiers[i%len(tiers)]
			res, err := e.Evaluate(context.Background(), d, dmn.NewVariables(map[string]any{"tier": tier}))
			if err != nil {
				t.Errorf("evaluating %s: %v", tier, err)
				return
			}
			if got := fmt.Sprint(res.Values("tier")); got != fmt.Sprintf("[%s]", tier) {
				t.Errorf("got %s for %s", got, tier)
			}
		}()
	}
	wg.Wait()
}
