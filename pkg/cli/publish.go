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

func newPublishCommand() *Command {
	cmd := &Command{
		Name:        "publish",
		Description: "Publish a GraphQL SDL file to a target",
		Flags:       flag.NewFlagSet("publish", flag.ExitOnError),
		Run:         runPublish,
	}

	cmd.Flags.String("target", "", "Target ID")
	cmd.Flags.String("service", "", "Service name (federated/stitched projects only)")
	cmd.Flags.String("file", "", "Path to the SDL file")
	cmd.Flags.String("service-url", "", "Service URL (federated/stitched projects only)")
	cmd.Flags.String("author", "", "Author of this publish")
	cmd.Flags.String("commit", "", "Commit SHA this publish was built from")
	cmd.Flags.Bool("force", false, "Skip breaking-change checks")
	cmd.Flags.String("registry", "http://localhost:8080", "Registry base URL")
	cmd.Flags.String("token", "", "Bearer token")

	return cmd
}

type publishRequest struct {
	ServiceName string `json:"service_name,omitempty"`
	SDL         string `json:"sdl"`
	ServiceURL  string `json:"service_url,omitempty"`
	Author      string `json:"author,omitempty"`
	Commit      string `json:"commit,omitempty"`
	Force       bool   `json:"force,omitempty"`
}

type publishResponse struct {
	CheckID    string `json:"CheckID"`
	VersionID  string `json:"VersionID"`
	Conclusion struct {
		Kind         string `json:"Kind"`
		RejectReason string `json:"RejectReason"`
		IgnoreReason string `json:"IgnoreReason"`
	} `json:"Conclusion"`
}

func runPublish(args []string) error {
	flags := flag.NewFlagSet("publish", flag.ExitOnError)
	target := flags.String("target", "", "Target ID")
	service := flags.String("service", "", "Service name")
	file := flags.String("file", "", "Path to the SDL file")
	serviceURL := flags.String("service-url", "", "Service URL")
	author := flags.String("author", "", "Author")
	commit := flags.String("commit", "", "Commit SHA")
	force := flags.Bool("force", false, "Skip breaking-change checks")
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

	body, err := json.Marshal(publishRequest{
		ServiceName: *service,
		SDL:         string(sdl),
		ServiceURL:  *serviceURL,
		Author:      *author,
		Commit:      *commit,
		Force:       *force,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/targets/%s/publish", *registry, *target)
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
		return fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("publish failed with status %d", resp.StatusCode)
	}

	var result publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("%s\n", result.Conclusion.Kind)
	switch result.Conclusion.Kind {
	case "Publish":
		return nil
	case "Ignore":
		fmt.Printf("  - %s\n", result.Conclusion.IgnoreReason)
		return nil
	default:
		fmt.Printf("  - %s\n", result.Conclusion.RejectReason)
		return fmt.Errorf("publish was not accepted: %s", result.Conclusion.Kind)
	}
}
