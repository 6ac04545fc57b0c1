package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	"gopkg.in/yaml.v3"
)

// Job is one tool invocation. Arguments holds the argument elements,
// with or without the surrounding <arguments> element.
type Job struct {
	Tool      string `yaml:"tool"`
	Arguments string `yaml:"arguments"`
}

// JobResult is what the runner prints for a job.
type JobResult struct {
	Tool     string                 `json:"tool"`
	Output   json.RawMessage        `json:"output,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// loadJobs reads a YAML list of jobs.
func loadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var jobs []Job
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	for i, job := range jobs {
		if strings.TrimSpace(job.Tool) == "" {
			return nil, fmt.Errorf("job %d: tool is required", i+1)
		}
	}
	return jobs, nil
}

// toolCall turns a job into a tool call for the registry.
func (j Job) toolCall() *tools.ToolCall {
	args := strings.TrimSpace(j.Arguments)
	if strings.HasPrefix(args, "<arguments>") && strings.HasSuffix(args, "</arguments>") {
		args = strings.TrimSuffix(strings.TrimPrefix(args, "<arguments>"), "</arguments>")
	}
	return &tools.ToolCall{
		ToolName:  strings.TrimSpace(j.Tool),
		Arguments: tools.ArgumentsBlock{InnerXML: []byte(args)},
	}
}

// runJobs executes jobs in order. It keeps going after a failing job and
// reports whether any job returned an error.
func runJobs(ctx context.Context, reg *tools.Registry, jobs []Job) ([]JobResult, bool) {
	results := make([]JobResult, 0, len(jobs))
	failed := false
	for _, job := range jobs {
		if ctx.Err() != nil {
			results = append(results, JobResult{Tool: job.Tool, Error: ctx.Err().Error()})
			failed = true
			continue
		}

		res, err := reg.Execute(ctx, job.toolCall())
		out := JobResult{Tool: job.Tool}
		if res != nil {
			out.Output = rawOutput(res.Output)
			out.Metadata = res.Metadata
		}
		if err != nil {
			out.Error = err.Error()
			failed = true
		}
		results = append(results, out)
	}
	return results, failed
}

// rawOutput embeds JSON tool output as-is and quotes anything else.
func rawOutput(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	quoted, _ := json.Marshal(s)
	return quoted
}
