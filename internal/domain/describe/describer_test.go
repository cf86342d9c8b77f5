package describe

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"rayee-server-go/internal/domain/credential"
	"rayee-server-go/internal/platform/config"
)

func testVisionConfig() config.VisionConfig {
	return config.VisionConfig{
		BaseURL:        "https://api.groq.com/openai/v1",
		ModelName:      "test-model",
		Temperature:    0.7,
		TopP:           0.9,
		RequestTimeout: "5s",
	}
}

func testImage() ImagePayload {
	return ImagePayload{Data: []byte{0xFF, 0xD8, 0xFF}, Format: "jpeg"}
}

// stubInvoker records the credentials tried and replies from a script.
type stubInvoker struct {
	tried   []string
	results map[string]string
	errs    map[string]error
}

func (s *stubInvoker) invoke(ctx context.Context, apiKey string, image ImagePayload, inst InstructionSet) (string, error) {
	s.tried = append(s.tried, apiKey)
	if err, ok := s.errs[apiKey]; ok {
		return "", err
	}
	return s.results[apiKey], nil
}

func newTestDescriber(t *testing.T, keys []string, stub *stubInvoker) *Describer {
	t.Helper()
	d, err := NewDescriber(testVisionConfig(), credential.NewPool(keys...), nil)
	if err != nil {
		t.Fatalf("NewDescriber: %v", err)
	}
	d.invoke = stub.invoke
	return d
}

func TestDescribe_FirstSuccessWins(t *testing.T) {
	stub := &stubInvoker{
		results: map[string]string{"k1": "  a clear path ahead  "},
	}
	d := newTestDescriber(t, []string{"k1", "k2", "k3"}, stub)

	inst, _ := InstructionsFor("am")
	got, err := d.Describe(context.Background(), testImage(), inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a clear path ahead" {
		t.Errorf("expected trimmed description, got %q", got)
	}
	if len(stub.tried) != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", len(stub.tried))
	}
}

func TestDescribe_KthSuccessMakesExactlyKCalls(t *testing.T) {
	for _, k := range []int{1, 2, 3, 4, 5} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			keys := []string{"k1", "k2", "k3", "k4", "k5"}
			stub := &stubInvoker{
				results: map[string]string{},
				errs:    map[string]error{},
			}
			for i := 0; i < k-1; i++ {
				stub.errs[keys[i]] = fmt.Errorf("quota exceeded for %s", keys[i])
			}
			stub.results[keys[k-1]] = fmt.Sprintf("description from %s", keys[k-1])

			d := newTestDescriber(t, keys, stub)
			inst, _ := InstructionsFor("am")
			got, err := d.Describe(context.Background(), testImage(), inst)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := fmt.Sprintf("description from %s", keys[k-1]); got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
			if len(stub.tried) != k {
				t.Fatalf("expected exactly %d upstream calls, got %d", k, len(stub.tried))
			}
			for i := 0; i < k; i++ {
				if stub.tried[i] != keys[i] {
					t.Errorf("call %d used %s, expected %s (strict pool order)", i, stub.tried[i], keys[i])
				}
			}
		})
	}
}

func TestDescribe_AllCredentialsExhausted(t *testing.T) {
	keys := []string{"k1", "k2", "k3"}
	stub := &stubInvoker{
		errs: map[string]error{
			"k1": fmt.Errorf("network unreachable"),
			"k2": fmt.Errorf("quota exceeded"),
			"k3": fmt.Errorf("invalid api key"),
		},
	}
	d := newTestDescriber(t, keys, stub)

	inst, _ := InstructionsFor("ti")
	_, err := d.Describe(context.Background(), testImage(), inst)
	if err == nil {
		t.Fatal("expected error after full exhaustion")
	}
	if !IsExhausted(err) {
		t.Errorf("expected exhaustion error, got %v", err)
	}
	if len(stub.tried) != len(keys) {
		t.Errorf("expected %d upstream calls, got %d", len(keys), len(stub.tried))
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("surfaced error should correspond to the last attempt, got %v", err)
	}
}

func TestDescribe_EmptyResponseRotates(t *testing.T) {
	stub := &stubInvoker{
		results: map[string]string{
			"k1": "   ",
			"k2": "obstacle two meters ahead",
		},
	}
	d := newTestDescriber(t, []string{"k1", "k2"}, stub)

	inst, _ := InstructionsFor("am")
	got, err := d.Describe(context.Background(), testImage(), inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "obstacle two meters ahead" {
		t.Errorf("expected second credential's result, got %q", got)
	}
	if len(stub.tried) != 2 {
		t.Errorf("expected 2 upstream calls, got %d", len(stub.tried))
	}
}

func TestDescribe_AllEmptyResponsesIsExhaustion(t *testing.T) {
	stub := &stubInvoker{
		results: map[string]string{"k1": "", "k2": ""},
	}
	d := newTestDescriber(t, []string{"k1", "k2"}, stub)

	inst, _ := InstructionsFor("am")
	_, err := d.Describe(context.Background(), testImage(), inst)
	if err == nil {
		t.Fatal("expected error when every credential yields empty text")
	}
	if !IsExhausted(err) {
		t.Errorf("expected exhaustion error, got %v", err)
	}
}

func TestDescribe_EmptyImageRejected(t *testing.T) {
	stub := &stubInvoker{}
	d := newTestDescriber(t, []string{"k1"}, stub)

	inst, _ := InstructionsFor("am")
	_, err := d.Describe(context.Background(), ImagePayload{}, inst)
	if err == nil {
		t.Fatal("expected error for empty image payload")
	}
	if len(stub.tried) != 0 {
		t.Errorf("expected zero upstream calls, got %d", len(stub.tried))
	}
}

func TestNewDescriber_EmptyPool(t *testing.T) {
	if _, err := NewDescriber(testVisionConfig(), credential.NewPool(), nil); err == nil {
		t.Fatal("expected error for empty pool")
	}
}
