package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegistryFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := writeRegistryFile(t, "publishers.yaml", `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: queue
    type: SQS
    sqs:
      uri: " https://sqs.us-east-1.amazonaws.com/123/referrals "
      region: us-east-1
      endpoint: http://localhost:4566
  - id: gcp
    type: pubsub
    pubsub:
      project_id: demo
      topic: referrals
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "queue" || enabled[1].ID != "gcp" {
		t.Fatalf("expected queue and gcp enabled, got %#v", enabled)
	}
	if enabled[0].Type != TypeSQS || enabled[0].SQS.QueueURL != "https://sqs.us-east-1.amazonaws.com/123/referrals" {
		t.Fatalf("sqs entry not sanitized: %#v", enabled[0].SQS)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("All should keep disabled entries")
	}
}

func TestLoadRegistryJSONDefaultsHTTP(t *testing.T) {
	path := writeRegistryFile(t, "publishers.json", `{"publishers":[{"id":"hook","type":"http","http":{"url":"https://example.com/hook","headers":{" X-Key ":" v ","":"x"}}}]}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg := reg.All()[0]
	if cfg.HTTP.Method != httpDefaultMethod || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", cfg.HTTP)
	}
	if len(cfg.HTTP.Headers) != 1 || cfg.HTTP.Headers["X-Key"] != "v" {
		t.Fatalf("headers not sanitized: %#v", cfg.HTTP.Headers)
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeRegistryFile(t, "publishers.yaml", `
publishers:
  - id: hook
    type: http
    http: {url: https://a.example.com}
  - id: hook
    type: http
    http: {url: https://b.example.com}
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "demo"}},
		{ID: "k1", Type: "kafka"},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := cfg.validate(); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
