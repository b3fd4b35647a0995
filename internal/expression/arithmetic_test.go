package expression

import "testing"

func TestEvaluateArithmetic(t *testing.T) {
	cases := []struct {
		name       string
		expression string
		variables  map[string]float64
		want       float64
		wantErr    bool
	}{
		{"add", "{a} + {b}", map[string]float64{"a": 2, "b": 3}, 5, false},
		{"precedence", "{a} + {b} * {c}", map[string]float64{"a": 1, "b": 2, "c": 3}, 7, false},
		{"parens", "({a} + {b}) * {c}", map[string]float64{"a": 1, "b": 2, "c": 3}, 9, false},
		{"decimal", "{a} / {b}", map[string]float64{"a": 7, "b": 2}, 3.5, false},
		{"unary minus", "-{a} + {b}", map[string]float64{"a": 2, "b": 5}, 3, false},
		{"div by zero", "{a} / {b}", map[string]float64{"a": 1, "b": 0}, 0, true},
		{"unbound var", "{a} + {b}", map[string]float64{"a": 1}, 0, true},
		{"disallowed token", "{a} + abc", map[string]float64{"a": 1}, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EvaluateArithmetic(tc.expression, tc.variables)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got value %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateArithmeticRejectsInjection(t *testing.T) {
	_, err := EvaluateArithmetic("{a}; DROP TABLE metrics", map[string]float64{"a": 1})
	if err == nil {
		t.Fatal("expected rejection of non-arithmetic tokens")
	}
}

func TestEvaluateWeightedSum(t *testing.T) {
	weights := map[string]float64{"requests": 0.5, "bytes": 0.1}
	inputs := map[string]float64{"requests": 10, "bytes": 100}
	got, err := EvaluateWeightedSum(weights, inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.5*10 + 0.1*100
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvaluateWeightedSumUnboundMetric(t *testing.T) {
	_, err := EvaluateWeightedSum(map[string]float64{"missing": 1}, map[string]float64{})
	if err == nil {
		t.Fatal("expected error for unbound metric")
	}
}
