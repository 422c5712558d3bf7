package orchestrator

import (
	"strings"

	"github.com/choreohq/choreo/pkg/models"
)

// Preferred tool names the recommendation table knows about.
const (
	toolAPI      = "API_Tool"
	toolRPA      = "RPA_Tool"
	toolSelenium = "Selenium_RPA_Tool"
)

// recommendTool picks a tool for a node from the ordered candidate list.
// The rules are deterministic, first match wins:
//
//	validation / audit              -> API_Tool, else first available
//	execution named "file_upload"   -> Selenium_RPA_Tool, else RPA_Tool, else first
//	execution (other names)         -> RPA_Tool, else first
//	anything else                   -> first available
//
// "First available" rather than a random pick keeps runs reproducible.
// An empty candidate list recommends nothing; dispatch rejects downstream.
func recommendTool(node *models.AgentNode, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	has := func(name string) bool {
		for _, c := range candidates {
			if c == name {
				return true
			}
		}
		return false
	}

	switch node.Type {
	case models.AgentTypeValidation, models.AgentTypeAudit:
		if has(toolAPI) {
			return toolAPI
		}
	case models.AgentTypeExecution:
		if strings.EqualFold(node.Name, "file_upload") && has(toolSelenium) {
			return toolSelenium
		}
		if has(toolRPA) {
			return toolRPA
		}
	}
	return candidates[0]
}
