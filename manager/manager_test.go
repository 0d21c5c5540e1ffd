package manager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/m4xw311/shortbot/agent"
	"github.com/m4xw311/shortbot/config"
	"github.com/m4xw311/shortbot/engine"
	"google.golang.org/api/googleapi"
)

type fakePlatform struct {
	createErr  error
	created    *engine.Engine
	getErr     error
	engines    []*engine.Engine
	listErr    error
	deleteErr  error
	deletes    []string
	forces     []bool
	queryOut   map[string]interface{}
	queryErr   error
	queries    []string
	queryInput map[string]interface{}
	streamBody string
	streamErr  error
}

func (f *fakePlatform) CreateEngine(ctx context.Context, e *engine.Engine) (*engine.Engine, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.created == nil {
		f.created = &engine.Engine{Name: "projects/p/locations/l/reasoningEngines/111", DisplayName: e.DisplayName}
	}
	return f.created, nil
}

func (f *fakePlatform) GetEngine(ctx context.Context, name string) (*engine.Engine, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &engine.Engine{Name: name}, nil
}

func (f *fakePlatform) ListEngines(ctx context.Context) ([]*engine.Engine, error) {
	return f.engines, f.listErr
}

func (f *fakePlatform) DeleteEngine(ctx context.Context, name string, force bool) error {
	f.deletes = append(f.deletes, name)
	f.forces = append(f.forces, force)
	return f.deleteErr
}

func (f *fakePlatform) Query(ctx context.Context, name, method string, input map[string]interface{}) (map[string]interface{}, error) {
	f.queries = append(f.queries, method)
	f.queryInput = input
	return f.queryOut, f.queryErr
}

func (f *fakePlatform) StreamQuery(ctx context.Context, name, method string, input map[string]interface{}) (*engine.Stream, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return engine.NewStream(io.NopCloser(strings.NewReader(f.streamBody))), nil
}

type fakeStager struct {
	packageName  string
	requirements []string
	err          error
}

func (f *fakeStager) Stage(ctx context.Context, packageName string, manifest []byte, requirements []string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.packageName = packageName
	f.requirements = requirements
	return "gs://staging/" + packageName + "/agent_package.tar.gz",
		"gs://staging/" + packageName + "/requirements.txt", nil
}

func testDeployment() *config.Deployment {
	return &config.Deployment{
		ProjectID:     "my-project",
		Location:      "us-central1",
		StagingBucket: "gs://staging",
		PackageName:   "shortbot",
		DisplayName:   "Shortening Bot",
		Requirements:  []string{"google-cloud-aiplatform[adk,agent_engines]"},
	}
}

func newTestManager(platform *fakePlatform, stager *fakeStager) (*Manager, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	m := New(testDeployment(), platform, stager, agent.Shortener(""), out, errOut)
	return m, out, errOut
}

func TestCreate(t *testing.T) {
	platform := &fakePlatform{}
	stager := &fakeStager{}
	m, out, errOut := newTestManager(platform, stager)

	m.Create(context.Background())

	if errOut.Len() != 0 {
		t.Errorf("unexpected error output: %s", errOut.String())
	}
	if stager.packageName != "shortbot" {
		t.Errorf("staged package name = %q", stager.packageName)
	}
	if len(stager.requirements) != 1 {
		t.Errorf("staged requirements = %v", stager.requirements)
	}
	text := out.String()
	if !strings.Contains(text, "Successfully created agent 'Shortening Bot'") {
		t.Errorf("missing success line:\n%s", text)
	}
	if !strings.Contains(text, "Engine ID: 111") {
		t.Errorf("missing engine ID line:\n%s", text)
	}
}

func TestCreateAPIError(t *testing.T) {
	platform := &fakePlatform{createErr: &googleapi.Error{Code: 403, Message: "permission denied"}}
	m, _, errOut := newTestManager(platform, &fakeStager{})

	m.Create(context.Background())

	text := errOut.String()
	if !strings.Contains(text, "status 403") || !strings.Contains(text, "permission denied") {
		t.Errorf("API error not surfaced verbatim:\n%s", text)
	}
}

func TestDeleteRequiresEngineID(t *testing.T) {
	platform := &fakePlatform{}
	m, _, errOut := newTestManager(platform, &fakeStager{})

	m.Delete(context.Background(), "", false)

	if len(platform.deletes) != 0 {
		t.Error("delete must not reach the platform without an engine ID")
	}
	if !strings.Contains(errOut.String(), "engine ID is required") {
		t.Errorf("missing validation message: %s", errOut.String())
	}
}

func TestDeleteResolvesShortID(t *testing.T) {
	platform := &fakePlatform{}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.Delete(context.Background(), "999", true)

	want := "projects/my-project/locations/us-central1/reasoningEngines/999"
	if len(platform.deletes) != 1 || platform.deletes[0] != want {
		t.Errorf("deleted %v, want %q", platform.deletes, want)
	}
	if !platform.forces[0] {
		t.Error("force flag not passed through")
	}
	if !strings.Contains(out.String(), "Agent deleted successfully.") {
		t.Errorf("missing success message: %s", out.String())
	}
}

func TestDeleteFailedPreconditionSuggestsForce(t *testing.T) {
	platform := &fakePlatform{deleteErr: &googleapi.Error{Code: 409, Message: "has child resources"}}
	m, _, errOut := newTestManager(platform, &fakeStager{})

	m.Delete(context.Background(), "999", false)

	text := errOut.String()
	if !strings.Contains(text, "existing sessions or other child resources") {
		t.Errorf("precondition case not reported:\n%s", text)
	}
	if !strings.Contains(text, "deploy delete 999 --force") {
		t.Errorf("missing corrected command suggestion:\n%s", text)
	}
}

func TestDeleteNotFound(t *testing.T) {
	platform := &fakePlatform{deleteErr: &googleapi.Error{Code: 404, Message: "no such engine"}}
	m, _, errOut := newTestManager(platform, &fakeStager{})

	m.Delete(context.Background(), "999", false)

	if !strings.Contains(errOut.String(), "Agent with ID '999' not found") {
		t.Errorf("not-found case not reported: %s", errOut.String())
	}
}

func TestListEmpty(t *testing.T) {
	m, out, errOut := newTestManager(&fakePlatform{}, &fakeStager{})

	m.List(context.Background(), "")

	if errOut.Len() != 0 {
		t.Errorf("empty list must not be an error: %s", errOut.String())
	}
	if !strings.Contains(out.String(), "No deployments found.") {
		t.Errorf("missing empty-result message: %s", out.String())
	}
}

func TestListFormatting(t *testing.T) {
	created := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	platform := &fakePlatform{engines: []*engine.Engine{
		{Name: "projects/p/locations/l/reasoningEngines/1", DisplayName: "Shortening Bot", CreateTime: created},
	}}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.List(context.Background(), "")

	text := out.String()
	for _, want := range []string{"[1] Shortening Bot", "Engine ID: 1", "Created: 2026-08-24 10:30:00"} {
		if !strings.Contains(text, want) {
			t.Errorf("list output missing %q:\n%s", want, text)
		}
	}
}

func TestListFilter(t *testing.T) {
	platform := &fakePlatform{engines: []*engine.Engine{
		{Name: "projects/p/locations/l/reasoningEngines/1", DisplayName: "Shortening Bot"},
		{Name: "projects/p/locations/l/reasoningEngines/2", DisplayName: "Other Agent"},
	}}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.List(context.Background(), "Short*")

	text := out.String()
	if !strings.Contains(text, "Shortening Bot") {
		t.Errorf("filter dropped a matching deployment:\n%s", text)
	}
	if strings.Contains(text, "Other Agent") {
		t.Errorf("filter kept a non-matching deployment:\n%s", text)
	}
}

func TestCreateSession(t *testing.T) {
	platform := &fakePlatform{queryOut: map[string]interface{}{"id": "session-7"}}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.CreateSession(context.Background(), "999", "")

	if len(platform.queries) != 1 || platform.queries[0] != "create_session" {
		t.Errorf("queries = %v", platform.queries)
	}
	if platform.queryInput["user_id"] != config.DefaultUserID {
		t.Errorf("user_id = %v, want default", platform.queryInput["user_id"])
	}
	text := out.String()
	if !strings.Contains(text, "Session ID: session-7") {
		t.Errorf("missing session ID:\n%s", text)
	}
}

func TestCreateSessionEngineNotFound(t *testing.T) {
	platform := &fakePlatform{getErr: &googleapi.Error{Code: 404}}
	m, _, errOut := newTestManager(platform, &fakeStager{})

	m.CreateSession(context.Background(), "999", "alice")

	if len(platform.queries) != 0 {
		t.Error("session creation must stop when the engine is missing")
	}
	if !strings.Contains(errOut.String(), "Agent with ID '999' not found") {
		t.Errorf("missing not-found report: %s", errOut.String())
	}
}

func TestListSessions(t *testing.T) {
	platform := &fakePlatform{queryOut: map[string]interface{}{
		"sessions": []interface{}{
			map[string]interface{}{"id": "session-1"},
			map[string]interface{}{"id": "session-2"},
		},
	}}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.ListSessions(context.Background(), "999", "alice")

	text := out.String()
	if !strings.Contains(text, "- session-1") || !strings.Contains(text, "- session-2") {
		t.Errorf("session listing incomplete:\n%s", text)
	}
}

func TestListSessionsEmpty(t *testing.T) {
	platform := &fakePlatform{queryOut: map[string]interface{}{"sessions": []interface{}{}}}
	m, out, errOut := newTestManager(platform, &fakeStager{})

	m.ListSessions(context.Background(), "999", "")

	if errOut.Len() != 0 {
		t.Errorf("empty session list must not be an error: %s", errOut.String())
	}
	if !strings.Contains(out.String(), "No sessions found for user 'default-user'.") {
		t.Errorf("missing empty-result message: %s", out.String())
	}
}

func TestChatRawOneRecordPerChunk(t *testing.T) {
	platform := &fakePlatform{
		streamBody: `{"content":{"parts":[{"text":"A"}]}}{"content":{"parts":[{"text":"B"}]}}{"done":true}`,
	}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.Chat(context.Background(), "999", "session-1", "shorten this", "", true)

	text := out.String()
	records := 0
	for _, line := range strings.Split(text, "\n") {
		if line == "{" {
			records++
		}
	}
	if records != 3 {
		t.Errorf("raw mode printed %d records, want one per chunk (3):\n%s", records, text)
	}
	// Arrival order preserved.
	if strings.Index(text, `"A"`) > strings.Index(text, `"B"`) {
		t.Errorf("chunks out of order:\n%s", text)
	}
	if !strings.Contains(text, "--- RAW AGENT STREAM ---") || !strings.Contains(text, "--- END RAW AGENT STREAM ---") {
		t.Errorf("missing raw stream markers:\n%s", text)
	}
}

func TestChatTextMode(t *testing.T) {
	platform := &fakePlatform{
		streamBody: `{"content":{"parts":[{"text":"Long message "}]}}{"content":{"parts":[{"text":"needing big cuts"}]}}{"usage":{}}`,
	}
	m, out, _ := newTestManager(platform, &fakeStager{})

	m.Chat(context.Background(), "999", "session-1", "shorten this", "", false)

	if !strings.Contains(out.String(), "Long message needing big cuts") {
		t.Errorf("text parts not concatenated in order:\n%s", out.String())
	}
}

func TestChatNotFound(t *testing.T) {
	platform := &fakePlatform{streamErr: &googleapi.Error{Code: 404}}
	m, _, errOut := newTestManager(platform, &fakeStager{})

	m.Chat(context.Background(), "999", "bad-session", "hi", "", false)

	if !strings.Contains(errOut.String(), "Check your session ID") {
		t.Errorf("missing session hint: %s", errOut.String())
	}
}

func TestStagingFailureReported(t *testing.T) {
	m, _, errOut := newTestManager(&fakePlatform{}, &fakeStager{err: fmt.Errorf("bucket gone")})

	m.Create(context.Background())

	if !strings.Contains(errOut.String(), "unexpected error") {
		t.Errorf("staging failure not reported: %s", errOut.String())
	}
}
