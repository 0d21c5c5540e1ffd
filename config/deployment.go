package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultUserID is used for remote sessions when no user is given.
const DefaultUserID = "default-user"

const defaultRequirements = "google-cloud-aiplatform[adk,agent_engines]"

// Deployment holds everything needed to talk to the remote agent engine
// platform. It is constructed once at startup and passed by reference;
// nothing reads the environment after LoadDeployment returns.
type Deployment struct {
	ProjectID     string
	Location      string
	StagingBucket string
	PackageName   string
	DisplayName   string
	Description   string
	Requirements  []string
}

// MissingVarsError reports the required environment variables that were not
// set. It is returned before any remote call is attempted.
type MissingVarsError struct {
	Vars []string
}

func (e *MissingVarsError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Vars, ", "))
}

// LoadDeployment reads the deployment configuration from the environment,
// after loading a .env file if one is present in the working directory.
func LoadDeployment() (*Deployment, error) {
	// A missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()
	return DeploymentFromEnv(os.Getenv)
}

// DeploymentFromEnv builds the deployment configuration from the given
// lookup function. Split out so tests can supply their own environment.
func DeploymentFromEnv(getenv func(string) string) (*Deployment, error) {
	d := &Deployment{
		ProjectID:     getenv("GOOGLE_CLOUD_PROJECT"),
		Location:      getenv("GOOGLE_CLOUD_LOCATION"),
		StagingBucket: getenv("GOOGLE_CLOUD_STAGING_BUCKET"),
		PackageName:   getenv("AGENT_PACKAGE_NAME"),
		DisplayName:   getenv("AGENT_DISPLAY_NAME"),
		Description:   getenv("AGENT_DESCRIPTION"),
	}

	requirements := getenv("AGENT_REQUIREMENTS")
	if requirements == "" {
		requirements = defaultRequirements
	}
	for _, req := range strings.Split(requirements, ",") {
		if req = strings.TrimSpace(req); req != "" {
			d.Requirements = append(d.Requirements, req)
		}
	}

	required := []struct {
		name  string
		value string
	}{
		{"GOOGLE_CLOUD_PROJECT", d.ProjectID},
		{"GOOGLE_CLOUD_LOCATION", d.Location},
		{"GOOGLE_CLOUD_STAGING_BUCKET", d.StagingBucket},
		{"AGENT_PACKAGE_NAME", d.PackageName},
		{"AGENT_DISPLAY_NAME", d.DisplayName},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingVarsError{Vars: missing}
	}

	return d, nil
}

// EngineResourceName resolves a short engine ID to the fully qualified
// resource name. IDs that already look fully qualified pass through.
func (d *Deployment) EngineResourceName(engineID string) string {
	if strings.Contains(engineID, "projects/") {
		return engineID
	}
	return fmt.Sprintf("projects/%s/locations/%s/reasoningEngines/%s", d.ProjectID, d.Location, engineID)
}
