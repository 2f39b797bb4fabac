package taskflow

import "fmt"

// Treatment is the visual treatment of a task status.
type Treatment struct {
	Icon     string `json:"icon"`
	Color    string `json:"color"`
	Label    string `json:"label"`
	Animated bool   `json:"animated"`
}

var treatments = map[TaskStatus]Treatment{
	StatusPending:         {Icon: "clock", Color: "secondary", Label: "Pending"},
	StatusRunning:         {Icon: "loader", Color: "primary", Label: "Running", Animated: true},
	StatusSuccess:         {Icon: "circle-check", Color: "success", Label: "Succeeded"},
	StatusFailed:          {Icon: "alert-circle", Color: "danger", Label: "Failed"},
	StatusBlocked:         {Icon: "alert-circle", Color: "warning", Label: "Blocked"},
	StatusCancelled:       {Icon: "circle-x", Color: "secondary", Label: "Cancelled"},
	StatusWaitingApproval: {Icon: "hand-stop", Color: "warning", Label: "Waiting for approval"},
}

var unknownTreatment = Treatment{Icon: "help-circle", Color: "muted", Label: "Unknown"}

// StatusTreatment maps a status to its icon and colour. Only running is
// animated.
func StatusTreatment(s TaskStatus) Treatment {
	if t, ok := treatments[s]; ok {
		return t
	}
	return unknownTreatment
}

// Affordance is an action a node offers to the user.
type Affordance string

const (
	AffordanceConnect    Affordance = "connect"
	AffordanceDelete     Affordance = "delete"
	AffordanceEditParams Affordance = "edit_params"
	AffordanceMoveUp     Affordance = "move_up"
	AffordanceMoveDown   Affordance = "move_down"
	AffordanceApprove    Affordance = "approve"
)

// Affordances lists the actions available on a node. Structural actions
// are only offered in edit mode; reordering only in a chain layout.
func Affordances(n GraphNode, chain bool) []Affordance {
	var out []Affordance
	task := n.Data.Task
	if task.Type == TypeApproval && task.Status == StatusWaitingApproval {
		out = append(out, AffordanceApprove)
	}
	if !n.Data.IsEditMode {
		return out
	}
	out = append(out, AffordanceConnect, AffordanceDelete, AffordanceEditParams)
	if chain {
		if !n.Data.IsFirst {
			out = append(out, AffordanceMoveUp)
		}
		if !n.Data.IsLast {
			out = append(out, AffordanceMoveDown)
		}
	}
	return out
}

// NodeView is everything a client needs to draw one node.
type NodeView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        TaskType     `json:"type"`
	Status      TaskStatus   `json:"status"`
	Treatment   Treatment    `json:"treatment"`
	Duration    string       `json:"duration,omitempty"`
	Progress    bool         `json:"progress"`
	Summary     string       `json:"summary,omitempty"`
	Position    Position     `json:"position"`
	Affordances []Affordance `json:"affordances"`
}

// RenderNode builds the view of a node.
func RenderNode(n GraphNode, chain bool) NodeView {
	task := n.Data.Task
	v := NodeView{
		ID:          n.ID,
		Title:       task.Name,
		Type:        task.Type,
		Status:      task.Status,
		Treatment:   StatusTreatment(task.Status),
		Progress:    task.Status == StatusRunning,
		Summary:     paramsSummary(task.Params),
		Position:    n.Position,
		Affordances: Affordances(n, chain),
	}
	if task.Duration > 0 {
		v.Duration = fmt.Sprintf("%ds", task.Duration)
	}
	return v
}

// RenderGraph renders every node of a graph in order.
func RenderGraph(g Graph) []NodeView {
	out := make([]NodeView, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, RenderNode(n, g.Chain))
	}
	return out
}

func paramsSummary(p Params) string {
	switch v := p.(type) {
	case SleepParams:
		return fmt.Sprintf("wait %ds", v.Duration)
	case BuildParams:
		return "build " + v.TargetImage
	case DeployParams:
		return fmt.Sprintf("deploy %s x%d (%s)", v.Image, v.Replicas, v.Strategy)
	case TestParams:
		return "test " + v.TestSuite
	case ApprovalParams:
		return v.Note
	case HealthCheckParams:
		return "probe " + v.Endpoint
	default:
		return ""
	}
}
