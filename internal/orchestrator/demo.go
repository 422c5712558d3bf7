package orchestrator

import "github.com/choreohq/choreo/pkg/models"

// DemoWorkflow returns the built-in three-node graph used when the store is
// unavailable or the requested workflow is empty:
//
//	validator -> executor (p=0.8)
//	validator -> auditor  (p=0.2)
//	executor  -> auditor  (p=1.0)
func DemoWorkflow(id string) *models.Workflow {
	if id == "" {
		id = "workflow_demo"
	}
	return &models.Workflow{
		ID:    id,
		Entry: "validator",
		Nodes: map[string]*models.AgentNode{
			"validator": {
				ID:   "validator",
				Name: "Validator",
				Type: models.AgentTypeValidation,
				Next: []models.OutgoingEdge{
					{Target: "executor", Probability: 0.8, Condition: "valid"},
					{Target: "auditor", Probability: 0.2, Condition: "invalid"},
				},
			},
			"executor": {
				ID:   "executor",
				Name: "Executor",
				Type: models.AgentTypeExecution,
				Next: []models.OutgoingEdge{
					{Target: "auditor", Probability: 1.0},
				},
			},
			"auditor": {
				ID:   "auditor",
				Name: "Auditor",
				Type: models.AgentTypeAudit,
			},
		},
	}
}
