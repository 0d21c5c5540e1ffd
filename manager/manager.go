// Package manager implements the operator-facing deployment workflow:
// create, delete and list agent engines, manage remote sessions and stream
// chat responses. Every operation is an independent call into the remote
// platform; failures are reported and never retried, and none of them are
// fatal to the process.
package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m4xw311/shortbot/agent"
	"github.com/m4xw311/shortbot/config"
	"github.com/m4xw311/shortbot/engine"
	"github.com/m4xw311/shortbot/errors"
)

// Platform is the subset of the engine client the manager depends on.
type Platform interface {
	CreateEngine(ctx context.Context, e *engine.Engine) (*engine.Engine, error)
	GetEngine(ctx context.Context, name string) (*engine.Engine, error)
	ListEngines(ctx context.Context) ([]*engine.Engine, error)
	DeleteEngine(ctx context.Context, name string, force bool) error
	Query(ctx context.Context, name, method string, input map[string]interface{}) (map[string]interface{}, error)
	StreamQuery(ctx context.Context, name, method string, input map[string]interface{}) (*engine.Stream, error)
}

// Stager uploads the packaged agent to the staging bucket.
type Stager interface {
	Stage(ctx context.Context, packageName string, manifest []byte, requirements []string) (archiveURI, requirementsURI string, err error)
}

// Manager wires the deployment configuration, the platform client and the
// agent definition together. Output goes to out, diagnostics to errOut.
type Manager struct {
	cfg      *config.Deployment
	platform Platform
	stager   Stager
	def      *agent.Definition
	out      io.Writer
	errOut   io.Writer
}

func New(cfg *config.Deployment, platform Platform, stager Stager, def *agent.Definition, out, errOut io.Writer) *Manager {
	return &Manager{
		cfg:      cfg,
		platform: platform,
		stager:   stager,
		def:      def,
		out:      out,
		errOut:   errOut,
	}
}

// Create packages the agent definition, stages it and deploys a new engine.
func (m *Manager) Create(ctx context.Context) {
	manifest, err := m.def.Manifest()
	if err != nil {
		fmt.Fprintf(m.errOut, "Error packaging agent: %v\n", err)
		return
	}

	fmt.Fprintln(m.out, "Packaging agent...")
	archiveURI, requirementsURI, err := m.stager.Stage(ctx, m.cfg.PackageName, manifest, m.cfg.Requirements)
	if err != nil {
		m.reportError("staging agent package", err)
		return
	}

	fmt.Fprintln(m.out, "Deploying agent to the agent engine...")
	created, err := m.platform.CreateEngine(ctx, &engine.Engine{
		DisplayName: m.cfg.DisplayName,
		Description: m.cfg.Description,
		Spec: &engine.Spec{PackageSpec: &engine.PackageSpec{
			DependencyFilesGcsUri: archiveURI,
			RequirementsGcsUri:    requirementsURI,
		}},
	})
	if err != nil {
		m.reportError("deploying agent", err)
		return
	}

	fmt.Fprintf(m.out, "\nSuccessfully created agent '%s'\n", m.cfg.DisplayName)
	fmt.Fprintf(m.out, "   Full Resource Name: %s\n", created.Name)
	fmt.Fprintf(m.out, "   Engine ID: %s\n", created.ID())
}

// Delete removes an existing deployment. Without force, an engine that still
// has sessions is rejected by the platform; the report then suggests the
// corrected command line.
func (m *Manager) Delete(ctx context.Context, engineID string, force bool) {
	if engineID == "" {
		fmt.Fprintln(m.errOut, "Error: engine ID is required.")
		return
	}

	name := m.cfg.EngineResourceName(engineID)
	fmt.Fprintf(m.out, "Deleting agent: %s...\n", name)
	if force {
		fmt.Fprintln(m.out, "   --force set. Deleting agent and all child resources.")
	}

	err := m.platform.DeleteEngine(ctx, name, force)
	if err == nil {
		fmt.Fprintln(m.out, "\nAgent deleted successfully.")
		return
	}

	switch errors.KindOf(err) {
	case errors.KindFailedPrecondition:
		fmt.Fprintf(m.errOut, "\nError: Agent '%s' cannot be deleted because it has existing sessions or other child resources.\n", engineID)
		fmt.Fprintln(m.errOut, "To proceed, delete the agent and all its resources with the --force flag:")
		fmt.Fprintf(m.errOut, "   deploy delete %s --force\n", engineID)
	case errors.KindNotFound:
		fmt.Fprintf(m.errOut, "\nError: Agent with ID '%s' not found.\n", engineID)
	default:
		m.reportError("deleting agent", err)
	}
}

// List enumerates the deployments in the project. An empty result is not an
// error. A non-empty filter is matched against display names as a glob.
func (m *Manager) List(ctx context.Context, filter string) {
	fmt.Fprintln(m.out, "Listing available agent deployments...")
	deployments, err := m.platform.ListEngines(ctx)
	if err != nil {
		m.reportError("listing agents", err)
		return
	}

	if filter != "" {
		var kept []*engine.Engine
		for _, d := range deployments {
			match, err := doublestar.Match(filter, d.DisplayName)
			if err != nil {
				fmt.Fprintf(m.errOut, "Error: invalid filter pattern '%s': %v\n", filter, err)
				return
			}
			if match {
				kept = append(kept, d)
			}
		}
		deployments = kept
	}

	if len(deployments) == 0 {
		fmt.Fprintln(m.out, "No deployments found.")
		return
	}

	fmt.Fprintln(m.out, "\n--- Available Agents ---")
	for i, d := range deployments {
		fmt.Fprintf(m.out, "[%d] %s\n", i+1, d.DisplayName)
		fmt.Fprintf(m.out, "    Engine ID: %s\n", d.ID())
		fmt.Fprintf(m.out, "    Created: %s\n\n", d.CreateTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(m.out, "------------------------")
}

// CreateSession opens a new remote chat session for the given user.
func (m *Manager) CreateSession(ctx context.Context, engineID, userID string) {
	if userID == "" {
		userID = config.DefaultUserID
	}
	fmt.Fprintf(m.out, "Creating new session for user '%s'...\n", userID)

	name, ok := m.resolveEngine(ctx, engineID)
	if !ok {
		return
	}

	out, err := m.platform.Query(ctx, name, "create_session", map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		m.reportError("creating session", err)
		return
	}

	fmt.Fprintln(m.out, "\nSession created:")
	fmt.Fprintf(m.out, "   Session ID: %s\n", stringField(out, "id"))
	fmt.Fprintf(m.out, "   User ID: %s\n", userID)
}

// ListSessions lists the remote sessions of one user on one engine.
func (m *Manager) ListSessions(ctx context.Context, engineID, userID string) {
	if userID == "" {
		userID = config.DefaultUserID
	}
	fmt.Fprintf(m.out, "Listing sessions for user '%s'...\n", userID)

	name, ok := m.resolveEngine(ctx, engineID)
	if !ok {
		return
	}

	out, err := m.platform.Query(ctx, name, "list_sessions", map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		m.reportError("listing sessions", err)
		return
	}

	sessions, _ := out["sessions"].([]interface{})
	if len(sessions) == 0 {
		fmt.Fprintf(m.out, "No sessions found for user '%s'.\n", userID)
		return
	}

	fmt.Fprintf(m.out, "\n--- Sessions for %s ---\n", userID)
	for _, s := range sessions {
		if obj, ok := s.(map[string]interface{}); ok {
			fmt.Fprintf(m.out, "- %s\n", stringField(obj, "id"))
		}
	}
	fmt.Fprintln(m.out, "--------------------------")
}

// Chat sends a message into an existing session and consumes the streamed
// response. In raw mode every chunk is printed as one JSON record in arrival
// order; otherwise the first text part of each chunk is printed as it
// arrives.
func (m *Manager) Chat(ctx context.Context, engineID, sessionID, message, userID string, raw bool) {
	if userID == "" {
		userID = config.DefaultUserID
	}
	fmt.Fprintf(m.out, "Sending message to session '%s'...\n", sessionID)
	fmt.Fprintf(m.out, "   User: '%s'\n", message)

	name, ok := m.resolveEngine(ctx, engineID)
	if !ok {
		return
	}

	stream, err := m.platform.StreamQuery(ctx, name, "stream_query", map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
		"message":    message,
	})
	if err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			fmt.Fprintln(m.errOut, "\nError during chat: Resource not found. Check your session ID.")
			return
		}
		m.reportError("during chat", err)
		return
	}
	defer stream.Close()

	if raw {
		fmt.Fprintln(m.out, "\n--- RAW AGENT STREAM ---")
	} else {
		fmt.Fprintln(m.out, "\nAgent:")
	}

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			m.reportError("reading agent stream", err)
			return
		}
		if raw {
			record, err := json.MarshalIndent(chunk, "", "  ")
			if err != nil {
				m.reportError("serializing chunk", err)
				return
			}
			fmt.Fprintln(m.out, string(record))
			continue
		}
		if text := engine.ChunkText(chunk); text != "" {
			fmt.Fprint(m.out, text)
		}
	}

	if raw {
		fmt.Fprintln(m.out, "--- END RAW AGENT STREAM ---")
	} else {
		fmt.Fprintln(m.out)
	}
}

// resolveEngine checks that the engine exists and returns its fully
// qualified resource name. Failures are reported and ok is false.
func (m *Manager) resolveEngine(ctx context.Context, engineID string) (string, bool) {
	if engineID == "" {
		fmt.Fprintln(m.errOut, "Error: engine ID is required.")
		return "", false
	}
	name := m.cfg.EngineResourceName(engineID)
	if _, err := m.platform.GetEngine(ctx, name); err != nil {
		if errors.KindOf(err) == errors.KindNotFound {
			fmt.Fprintf(m.errOut, "Error: Agent with ID '%s' not found.\n", engineID)
		} else {
			m.reportError("retrieving agent", err)
		}
		return "", false
	}
	return name, true
}

// reportError translates a remote failure into an operator-facing message,
// most specific kind first.
func (m *Manager) reportError(doing string, err error) {
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		fmt.Fprintf(m.errOut, "\nError %s: resource not found.\n", doing)
	case errors.KindFailedPrecondition, errors.KindAPI:
		apiErr, _ := errors.APIError(err)
		fmt.Fprintf(m.errOut, "\nError %s: API call failed with status %d\n", doing, apiErr.Code)
		fmt.Fprintf(m.errOut, "Details: %s\n", apiErr.Message)
	default:
		fmt.Fprintf(m.errOut, "\nAn unexpected error occurred %s: %v\n", doing, err)
	}
}

func stringField(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return "N/A"
}
