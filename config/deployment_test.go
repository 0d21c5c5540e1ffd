package config

import (
	"errors"
	"reflect"
	"testing"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func fullEnv() map[string]string {
	return map[string]string{
		"GOOGLE_CLOUD_PROJECT":        "my-project",
		"GOOGLE_CLOUD_LOCATION":       "us-central1",
		"GOOGLE_CLOUD_STAGING_BUCKET": "gs://my-staging",
		"AGENT_PACKAGE_NAME":          "shortbot",
		"AGENT_DISPLAY_NAME":          "Shortening Bot",
	}
}

func TestDeploymentFromEnv(t *testing.T) {
	vars := fullEnv()
	vars["AGENT_DESCRIPTION"] = "shortens messages"
	vars["AGENT_REQUIREMENTS"] = "pkg-a, pkg-b ,pkg-c"

	d, err := DeploymentFromEnv(fakeEnv(vars))
	if err != nil {
		t.Fatalf("DeploymentFromEnv() error: %v", err)
	}
	if d.ProjectID != "my-project" || d.Location != "us-central1" {
		t.Errorf("unexpected project/location: %+v", d)
	}
	if d.Description != "shortens messages" {
		t.Errorf("Description = %q", d.Description)
	}
	if want := []string{"pkg-a", "pkg-b", "pkg-c"}; !reflect.DeepEqual(d.Requirements, want) {
		t.Errorf("Requirements = %v, want %v", d.Requirements, want)
	}
}

func TestDeploymentDefaults(t *testing.T) {
	d, err := DeploymentFromEnv(fakeEnv(fullEnv()))
	if err != nil {
		t.Fatalf("DeploymentFromEnv() error: %v", err)
	}
	if d.Description != "" {
		t.Errorf("Description should default to empty, got %q", d.Description)
	}
	if want := []string{"google-cloud-aiplatform[adk,agent_engines]"}; !reflect.DeepEqual(d.Requirements, want) {
		t.Errorf("Requirements = %v, want %v", d.Requirements, want)
	}
}

func TestDeploymentMissingVars(t *testing.T) {
	vars := fullEnv()
	delete(vars, "GOOGLE_CLOUD_PROJECT")
	delete(vars, "AGENT_DISPLAY_NAME")

	_, err := DeploymentFromEnv(fakeEnv(vars))
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	var missing *MissingVarsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingVarsError, got %T", err)
	}
	want := []string{"GOOGLE_CLOUD_PROJECT", "AGENT_DISPLAY_NAME"}
	if !reflect.DeepEqual(missing.Vars, want) {
		t.Errorf("missing vars = %v, want %v", missing.Vars, want)
	}
}

func TestEngineResourceName(t *testing.T) {
	d := &Deployment{ProjectID: "my-project", Location: "us-central1"}

	got := d.EngineResourceName("1234567890")
	want := "projects/my-project/locations/us-central1/reasoningEngines/1234567890"
	if got != want {
		t.Errorf("EngineResourceName(short) = %q, want %q", got, want)
	}

	full := "projects/other/locations/eu/reasoningEngines/42"
	if got := d.EngineResourceName(full); got != full {
		t.Errorf("fully qualified name should pass through, got %q", got)
	}
}

func TestGetToolset(t *testing.T) {
	cfg := &Config{Toolsets: []Toolset{
		{Name: "default", Tools: []string{"count_characters"}},
		{Name: "full", Tools: []string{"count_characters", "format_as_json"}},
	}}

	ts, err := cfg.GetToolset("full")
	if err != nil {
		t.Fatalf("GetToolset() error: %v", err)
	}
	if ts.Name != "full" {
		t.Errorf("got toolset %q, want \"full\"", ts.Name)
	}

	ts, err = cfg.GetToolset("missing")
	if err != nil {
		t.Fatalf("GetToolset() fallback error: %v", err)
	}
	if ts.Name != "default" {
		t.Errorf("expected fallback to default toolset, got %q", ts.Name)
	}

	empty := &Config{}
	if _, err := empty.GetToolset(""); err == nil {
		t.Error("expected error when no default toolset exists")
	}
}
