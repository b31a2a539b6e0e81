package openai

import (
	"context"
	"os"
	"testing"

	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/testutil"
)

// TestListModelsRecorded replays the committed OpenAI API exchange. Run
// with VCR_MODE=record and OPENAI_API_KEY set to refresh the cassette.
func TestListModelsRecorded(t *testing.T) {
	recording := os.Getenv("VCR_MODE") == "record"
	if recording && os.Getenv("OPENAI_API_KEY") == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	r := testutil.Recorder(t, "openai_list_models")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = "test-key"
	}

	p := New(config.ProviderConfig{APIKey: apiKey}, testLogger(), testutil.HTTPClient(r))

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("expected at least one model")
	}
	for _, m := range models {
		if m.ID == "" {
			t.Error("model entry missing ID")
		}
	}
	if !recording && models[0].ID != "gpt-4o" {
		t.Errorf("first model = %q, want gpt-4o", models[0].ID)
	}
}
