package cli

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func newCheckCommand() *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Check a GraphQL SDL file against a target's latest schema",
		Flags:       flag.NewFlagSet("check", flag.ExitOnError),
		Run:         runCheck,
	}

	cmd.Flags.String("target", "", "Target ID")
	cmd.Flags.String("service", "", "Service name (federated/stitched projects only)")
	cmd.Flags.String("file", "", "Path to the SDL file")
	cmd.Flags.String("registry", "http://localhost:8080", "Registry base URL")
	cmd.Flags.String("token", "", "Bearer token")

	return cmd
}

type checkRequest struct {
	ServiceName string `json:"service_name,omitempty"`
	SDL         string `json:"sdl"`
}

type checkResponse struct {
	CheckID    string `json:"CheckID"`
	Conclusion struct {
		Kind           string   `json:"Kind"`
		FailureReasons []string `json:"FailureReasons"`
	} `json:"Conclusion"`
}

func runCheck(args []string) error {
	flags := flag.NewFlagSet("check", flag.ExitOnError)
	target := flags.String("target", "", "Target ID")
	service := flags.String("service", "", "Service name")
	file := flags.String("file", "", "Path to the SDL file")
	registry := flags.String("registry", "http://localhost:8080", "Registry base URL")
	token := flags.String("token", "", "Bearer token")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *target == "" || *file == "" {
		return fmt.Errorf("--target and --file are required")
	}

	sdl, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}

	body, err := json.Marshal(checkRequest{ServiceName: *service, SDL: string(sdl)})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/targets/%s/check", *registry, *target)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("check request failed: %w", err)
	}
	defer resp.Body.Close()

	var result checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	fmt.Printf("%s\n", result.Conclusion.Kind)
	for _, reason := range result.Conclusion.FailureReasons {
		fmt.Printf("  - %s\n", reason)
	}
	if result.Conclusion.Kind == "Failure" {
		return fmt.Errorf("check failed")
	}
	return nil
}
