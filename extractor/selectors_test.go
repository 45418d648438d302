package extractor

import (
	"testing"

	"github.com/use-agent/setlist/config"
)

func TestDefaultSelectorsValidate(t *testing.T) {
	if err := DefaultSelectors().Validate(); err != nil {
		t.Fatalf("default selectors invalid: %v", err)
	}
}

func TestSelectorsFromConfig(t *testing.T) {
	s := SelectorsFromConfig(config.SelectorConfig{
		Rows:     "div.track",
		Duration: "span.time",
	})

	def := DefaultSelectors()
	if s.Rows != "div.track" || s.Duration != "span.time" {
		t.Errorf("overrides not applied: %+v", s)
	}
	if s.Title != def.Title || s.Header != def.Header || s.Ready != def.Ready {
		t.Errorf("defaults lost: %+v", s)
	}
}
