package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tplbridge/pkg/bridge"
	"github.com/goliatone/go-tplbridge/pkg/settings"
)

func main() {
	dirs := flag.String("dirs", ".", "comma-separated template directories")
	name := flag.String("template", "", "template name to render")
	contextPath := flag.String("context", "", "YAML or JSON context file (optional)")
	settingsPath := flag.String("settings", "", "YAML settings file (optional)")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	if *name == "" {
		log.Fatal("missing -template")
	}

	st := settings.New()
	if *settingsPath != "" {
		loaded, err := settings.Load(*settingsPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		st = loaded
	}

	context, err := loadContext(*contextPath)
	if err != nil {
		log.Fatalf("Failed to load context: %v", err)
	}

	backend, err := bridge.New(bridge.Params{
		Dirs: splitDirs(*dirs),
	}, bridge.WithSettings(st))
	if err != nil {
		log.Fatalf("Failed to configure backend: %v", err)
	}

	tmpl, err := backend.GetTemplate(*name)
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}

	rendered, err := tmpl.Render(context, nil)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Rendered output written to %s\n", *output)
	} else {
		fmt.Println(rendered)
	}
}

func splitDirs(raw string) []string {
	parts := strings.Split(raw, ",")
	dirs := make([]string, 0, len(parts))
	for _, part := range parts {
		dir := strings.TrimSpace(part)
		if dir == "" {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

func loadContext(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	context := make(map[string]any)
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &context); err != nil {
			return nil, fmt.Errorf("parse %q: %w", path, err)
		}
		return context, nil
	}
	if err := yaml.Unmarshal(data, &context); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	return context, nil
}
