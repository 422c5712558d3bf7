package tool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestRegistryOrderAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(NewEchoTool("API_Tool"))
	r.Register(NewEchoTool("RPA_Tool"))
	r.Register(NewEchoTool("Selenium_RPA_Tool"))

	names := r.List()
	want := []string{"API_Tool", "RPA_Tool", "Selenium_RPA_Tool"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if r.Get("RPA_Tool") == nil {
		t.Error("Get should find registered tool")
	}
	if r.Get("nope") != nil {
		t.Error("Get should return nil for unknown tool")
	}
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register(NewEchoTool("A"))
	r.Register(NewEchoTool("B"))
	r.Register(NewEchoTool("A"))

	names := r.List()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("List() = %v, want [A B]", names)
	}
}

func TestRegistryExecuteNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "missing", Params{})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

func TestRegistryExecuteRecordsStats(t *testing.T) {
	r := NewRegistry()
	fail := NewRPATool("Flaky", 0.0, 0) // always fails
	ok := NewEchoTool("Steady")
	r.Register(fail)
	r.Register(ok)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := r.Execute(ctx, "Steady", Params{Agent: "a"}); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if _, err := r.Execute(ctx, "Flaky", Params{Agent: "a"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	stat := r.StatSnapshot("Steady")
	if stat.Executions != 4 || stat.SuccessRate != 1.0 {
		t.Errorf("Steady stats = %+v", stat)
	}
	stat = r.StatSnapshot("Flaky")
	if stat.Executions != 1 || stat.SuccessRate != 0.0 {
		t.Errorf("Flaky stats = %+v", stat)
	}

	descs := r.Descriptors()
	if len(descs) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descs))
	}
	if descs[0].Name != "Flaky" || descs[0].Executions != 1 {
		t.Errorf("descriptor[0] = %+v", descs[0])
	}
}

func TestRegistryConcurrentExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(NewEchoTool("Steady"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Execute(context.Background(), "Steady", Params{})
		}()
	}
	wg.Wait()

	if stat := r.StatSnapshot("Steady"); stat.Executions != 50 {
		t.Errorf("executions = %d, want 50", stat.Executions)
	}
}

func TestAPITool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("X-Choreo-Agent") != "validator" {
			t.Errorf("missing agent header")
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	api := NewAPITool("API_Tool", srv.URL, "GET", 5*time.Second)
	res := api.Execute(context.Background(), Params{Agent: "validator", Step: "validation"})
	if !res.Success || res.Output != "ok" {
		t.Errorf("result = %+v", res)
	}
}

func TestAPIToolFailureStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := NewAPITool("API_Tool", srv.URL, "", 5*time.Second)
	res := api.Execute(context.Background(), Params{})
	if res.Success {
		t.Error("5xx should be a failure outcome")
	}
	if res.ErrorMessage == "" {
		t.Error("failure should carry an error message")
	}

	// Unreachable endpoint is also a data failure, not a panic.
	dead := NewAPITool("API_Tool", "http://127.0.0.1:1/none", "", time.Second)
	res = dead.Execute(context.Background(), Params{})
	if res.Success {
		t.Error("transport error should be a failure outcome")
	}
}

func TestRPAToolDeterministic(t *testing.T) {
	always := NewRPATool("RPA_Tool", 1.0, 0)
	if res := always.Execute(context.Background(), Params{Agent: "x"}); !res.Success {
		t.Errorf("success_rate=1.0 should always succeed: %+v", res)
	}

	never := NewRPATool("RPA_Tool", 0.0, 0)
	if res := never.Execute(context.Background(), Params{Agent: "x"}); res.Success {
		t.Errorf("success_rate=0.0 should always fail: %+v", res)
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	content := `
tools:
  - name: API_Tool
    kind: api
    endpoint: http://localhost:9999/api
    timeout: 5s
  - name: RPA_Tool
    kind: rpa
    success_rate: 0.8
  - name: Broken_Tool
    kind: teleport
  - name: Report_Tool
    kind: echo
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write tools file: %v", err)
	}

	r, err := LoadRegistry(path, nil)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	names := r.List()
	want := []string{"API_Tool", "RPA_Tool", "Report_Tool"}
	if len(names) != len(want) {
		t.Fatalf("List() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	names := r.List()
	if len(names) != 3 || names[0] != "API_Tool" {
		t.Errorf("default registry = %v", names)
	}
}
