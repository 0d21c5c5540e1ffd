// Package engine is a client for the remote agent engine platform. It
// covers the deployment lifecycle (create, get, list, delete), the
// method-dispatch query endpoint used for session management, and streamed
// chat queries. All calls are synchronous and never retried.
package engine

import (
	"encoding/json"
	"strings"
	"time"
)

// Engine is a deployed agent on the remote platform. The platform is the
// state of record; nothing here is persisted locally.
type Engine struct {
	Name        string    `json:"name,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
	Description string    `json:"description,omitempty"`
	CreateTime  time.Time `json:"createTime,omitempty"`
	Spec        *Spec     `json:"spec,omitempty"`
}

// ID returns the short engine ID, the last segment of the resource name.
func (e *Engine) ID() string {
	parts := strings.Split(e.Name, "/")
	return parts[len(parts)-1]
}

// Spec describes how the platform should run the agent.
type Spec struct {
	PackageSpec *PackageSpec `json:"packageSpec,omitempty"`
}

// PackageSpec references the staged agent package in cloud storage.
type PackageSpec struct {
	DependencyFilesGcsUri string `json:"dependencyFilesGcsUri,omitempty"`
	RequirementsGcsUri    string `json:"requirementsGcsUri,omitempty"`
}

// operation is the long-running operation wrapper returned by create and
// delete calls.
type operation struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    *opStatus       `json:"error,omitempty"`
}

type opStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
