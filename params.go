package taskflow

import (
	"encoding/json"
	"maps"
)

// Params is the typed parameter payload of a task. Each known TaskType has
// its own variant; everything else decodes into CustomParams.
type Params interface {
	isParams()
}

// BuildParams configures an image build.
type BuildParams struct {
	Dockerfile  string            `json:"dockerfile,omitempty"`
	Context     string            `json:"context,omitempty"`
	BuildArgs   map[string]string `json:"build_args,omitempty"`
	TargetImage string            `json:"target_image"`
}

// SleepParams pauses the workflow.
type SleepParams struct {
	Duration int    `json:"duration"` // seconds
	Reason   string `json:"reason,omitempty"`
}

// HealthCheckParams describes an HTTP probe.
type HealthCheckParams struct {
	Endpoint string `json:"endpoint"`
	Interval int    `json:"interval"` // seconds
	Timeout  int    `json:"timeout"`  // seconds
}

// DeployParams rolls an image out to an environment.
type DeployParams struct {
	Image       string             `json:"image"`
	Replicas    int                `json:"replicas"`
	Strategy    string             `json:"strategy"` // rolling, blue-green, canary
	CanaryRatio int                `json:"canary_ratio,omitempty"`
	HealthCheck *HealthCheckParams `json:"health_check,omitempty"`
}

// TestParams runs a test suite.
type TestParams struct {
	TestSuite   string   `json:"test_suite"`
	TestCases   []string `json:"test_cases,omitempty"`
	Environment string   `json:"environment"`
	Timeout     int      `json:"timeout,omitempty"`
}

// ApprovalParams gates the workflow on a human decision.
type ApprovalParams struct {
	Note              string   `json:"note"`
	RequiredApprovers []string `json:"required_approvers,omitempty"`
	AutoApproveAfter  int      `json:"auto_approve_after,omitempty"`
	Approved          bool     `json:"approved,omitempty"`
	Approver          string   `json:"approver,omitempty"`
}

// CustomParams is the opaque fallback for custom, prepare and unknown types.
type CustomParams map[string]any

func (BuildParams) isParams()       {}
func (SleepParams) isParams()       {}
func (HealthCheckParams) isParams() {}
func (DeployParams) isParams()      {}
func (TestParams) isParams()        {}
func (ApprovalParams) isParams()    {}
func (CustomParams) isParams()      {}

// DecodeParams decodes raw JSON into the variant selected by typ.
// Empty input yields nil params.
func DecodeParams(typ TaskType, raw json.RawMessage) (Params, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch typ {
	case TypeBuild:
		return decodeInto[BuildParams](raw)
	case TypeSleep:
		return decodeInto[SleepParams](raw)
	case TypeDeploy:
		return decodeInto[DeployParams](raw)
	case TypeTest:
		return decodeInto[TestParams](raw)
	case TypeApproval:
		return decodeInto[ApprovalParams](raw)
	case TypeHealthCheck:
		return decodeInto[HealthCheckParams](raw)
	default:
		var p CustomParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func decodeInto[P Params](raw json.RawMessage) (Params, error) {
	var p P
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func cloneParams(p Params) Params {
	switch v := p.(type) {
	case BuildParams:
		v.BuildArgs = maps.Clone(v.BuildArgs)
		return v
	case DeployParams:
		if v.HealthCheck != nil {
			hc := *v.HealthCheck
			v.HealthCheck = &hc
		}
		return v
	case TestParams:
		if v.TestCases != nil {
			v.TestCases = append([]string{}, v.TestCases...)
		}
		return v
	case ApprovalParams:
		if v.RequiredApprovers != nil {
			v.RequiredApprovers = append([]string{}, v.RequiredApprovers...)
		}
		return v
	case CustomParams:
		return maps.Clone(v)
	default:
		return p
	}
}

// EncodeParams encodes params for storage. Nil params encode to nil.
func EncodeParams(p Params) (json.RawMessage, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}
