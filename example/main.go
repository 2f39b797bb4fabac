package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/meikuraledutech/taskflow"
	"github.com/meikuraledutech/taskflow/memory"
)

func main() {
	ctx := context.Background()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var store taskflow.Store = memory.New()
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema")
	}

	// ── Seed a diamond: build -> (test, gate) -> deploy ───────────────
	wf := &taskflow.Workflow{
		DeploymentID: "dep-42",
		Status:       "pending",
		Tasks: []taskflow.Task{
			{ID: "t1", Name: "Build image", Type: taskflow.TypeBuild, Status: taskflow.StatusSuccess,
				Dependencies: []string{}, Params: taskflow.BuildParams{TargetImage: "shop:1.4.0"}},
			{ID: "t2", Name: "Integration tests", Type: taskflow.TypeTest, Status: taskflow.StatusRunning,
				Dependencies: []string{"t1"}, Params: taskflow.TestParams{TestSuite: "integration", Environment: "staging"}},
			{ID: "t3", Name: "Release approval", Type: taskflow.TypeApproval, Status: taskflow.StatusWaitingApproval,
				Dependencies: []string{"t1"}, Params: taskflow.ApprovalParams{Note: "Ship 1.4.0?"}},
			{ID: "t4", Name: "Deploy", Type: taskflow.TypeDeploy, Status: taskflow.StatusPending,
				Dependencies: []string{"t2", "t3"}, Params: taskflow.DeployParams{Image: "shop:1.4.0", Replicas: 3, Strategy: "rolling"}},
		},
	}
	if err := store.SaveWorkflow(ctx, wf); err != nil {
		log.Fatal().Err(err).Msg("save workflow")
	}
	fmt.Println("workflow saved")

	// ── View mode ─────────────────────────────────────────────────────
	ed := taskflow.NewEditor(wf.Tasks, taskflow.EditorOptions{
		AllowEdit: true,
		Layout:    taskflow.DefaultLayoutOptions(),
		Reporter:  taskflow.LogReporter{Log: log},
		OnSave: func(tasks []taskflow.Task) {
			err := store.SaveWorkflow(ctx, &taskflow.Workflow{DeploymentID: wf.DeploymentID, Status: wf.Status, Tasks: tasks})
			if err != nil {
				log.Error().Err(err).Msg("persist")
			}
		},
	})
	fmt.Println("\nlayout:")
	printGraph(ed.Graph())

	// Rejected: the graph is read-only until an edit session is opened.
	if err := ed.DeleteEdge(taskflow.EdgeID("t2", "t4")); err != nil {
		fmt.Printf("\nview mode: %v\n", err)
	}

	// ── Edit: drop t2 -> t4, add a smoke check after deploy ───────────
	if err := ed.EnterEdit(); err != nil {
		log.Fatal().Err(err).Msg("enter edit")
	}
	if err := ed.DeleteEdge(taskflow.EdgeID("t2", "t4")); err != nil {
		log.Fatal().Err(err).Msg("delete edge")
	}
	smoke, err := ed.AddNode()
	if err != nil {
		log.Fatal().Err(err).Msg("add node")
	}
	if err := ed.Connect("t4", smoke); err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	if err := ed.Connect(smoke, "t1"); err != nil {
		fmt.Printf("\nconnect %s -> t1: %v\n", smoke, err)
	}

	if _, err := ed.Save(); err != nil {
		log.Fatal().Err(err).Msg("save")
	}

	// ── Retrieve ──────────────────────────────────────────────────────
	saved, err := store.GetWorkflow(ctx, wf.DeploymentID)
	if err != nil {
		log.Fatal().Err(err).Msg("get workflow")
	}
	fmt.Println("\nsaved workflow:")
	printJSON(saved)

	fmt.Println("\nnodes:")
	printJSON(taskflow.RenderGraph(ed.Graph()))
}

func printGraph(g taskflow.Graph) {
	for _, n := range g.Nodes {
		fmt.Printf("  %-4s level=%d  (%4.0f, %4.0f)  %s\n", n.ID, n.Data.Level, n.Position.X, n.Position.Y, n.Data.Task.Status)
	}
	for _, e := range g.Edges {
		fmt.Printf("  %-8s %s -> %s  %s animated=%v\n", e.ID, e.Source, e.Target, e.Style.Color, e.Style.Animated)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
