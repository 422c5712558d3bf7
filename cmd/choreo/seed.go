package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/choreohq/choreo/internal/orchestrator"
	"github.com/choreohq/choreo/pkg/models"
)

var (
	seedFile   string
	seedTraces int
)

var seedCmd = &cobra.Command{
	Use:   "seed [workflow-id]",
	Short: "Seed the store with a workflow",
	Long: `Write a workflow definition into the store.

Without --file, the built-in demo graph is seeded:
  validator -> executor (p=0.8)
  validator -> auditor  (p=0.2)
  executor  -> auditor  (p=1.0)

With --file, the workflow is read from a YAML definition. Learned edges
already accumulated for the workflow survive reseeding.

Use --traces to also write synthetic execution traces, useful for
inspecting the trace queries against realistic data.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Workflow definition YAML file")
	seedCmd.Flags().IntVar(&seedTraces, "traces", 0, "Number of synthetic traces to write")
}

func runSeed(cmd *cobra.Command, args []string) error {
	workflowID := ""
	if len(args) > 0 {
		workflowID = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var wf *models.Workflow
	if seedFile != "" {
		wf, err = readWorkflowFile(seedFile)
		if err != nil {
			return err
		}
		if workflowID != "" {
			wf.ID = workflowID
		}
	} else {
		wf = orchestrator.DemoWorkflow(workflowID)
	}

	if wf.EntryNode() == nil {
		return fmt.Errorf("workflow %s: entry %q does not resolve to a node", wf.ID, wf.Entry)
	}

	ctx := cmd.Context()
	if err := db.SaveWorkflow(ctx, wf); err != nil {
		return fmt.Errorf("seeding workflow %s: %w", wf.ID, err)
	}

	for i := 0; i < seedTraces; i++ {
		trace := syntheticTrace(wf, i)
		if err := db.SaveTrace(ctx, trace); err != nil {
			return fmt.Errorf("writing synthetic trace: %w", err)
		}
	}

	green := color.New(color.FgGreen)
	green.Printf("Seeded workflow %s (%d nodes)\n", wf.ID, len(wf.Nodes))
	if seedTraces > 0 {
		fmt.Printf("Wrote %d synthetic traces\n", seedTraces)
	}
	return nil
}

func readWorkflowFile(path string) (*models.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}

	wf := &models.Workflow{}
	if err := yaml.Unmarshal(data, wf); err != nil {
		return nil, fmt.Errorf("parsing workflow file %s: %w", path, err)
	}
	if wf.ID == "" {
		return nil, fmt.Errorf("workflow file %s: missing workflow id", path)
	}

	// Node IDs double as map keys; fill them in from the key when omitted.
	for id, node := range wf.Nodes {
		if node.ID == "" {
			node.ID = id
		}
	}
	return wf, nil
}

// syntheticTrace fabricates a plausible trace row, cycling through the
// workflow's nodes and alternating outcomes.
func syntheticTrace(wf *models.Workflow, i int) *models.ExecutionTrace {
	ids := make([]string, 0, len(wf.Nodes))
	for id := range wf.Nodes {
		ids = append(ids, id)
	}

	status := models.TraceSuccess
	if i%5 == 4 {
		status = models.TraceFailure
	}

	return &models.ExecutionTrace{
		ID:         uuid.NewString(),
		RunID:      fmt.Sprintf("seed-run-%d", i/len(ids)),
		WorkflowID: wf.ID,
		NodeID:     ids[i%len(ids)],
		Status:     status,
		Details:    map[string]any{"synthetic": true},
		Timestamp:  time.Now().UTC().Add(-time.Duration(seedTraces-i) * time.Minute),
	}
}
