package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-actform/pkg/renderers/tui"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/session"
	"github.com/goliatone/go-actform/pkg/submit"
	"github.com/goliatone/go-actform/pkg/submit/gotemplate"
	"github.com/goliatone/go-actform/pkg/testsupport"
)

func main() {
	bundles := flag.String("bundles", "", "directory of act bundle YAML files (built-in sample if empty)")
	slug := flag.String("act", "compraventa-inmueble", "act slug to run")
	user := flag.String("user", "demo", "user id submissions run as")
	tenant := flag.String("tenant", "demo", "tenant id submissions run as")
	output := flag.String("output", "", "write the generated document to this file")
	flag.Parse()

	ctx := context.Background()

	bundle, err := resolveBundle(*bundles, *slug)
	if err != nil {
		log.Fatalf("load act bundle: %v", err)
	}

	renderer, err := gotemplate.New()
	if err != nil {
		log.Fatalf("template engine: %v", err)
	}
	store := &demoStore{output: *output}
	pipeline, err := submit.NewPipeline(store, submit.WithDocumentRenderer(renderer))
	if err != nil {
		log.Fatalf("submission pipeline: %v", err)
	}

	sess, err := session.New(bundle, testsupport.Directory(),
		session.WithPipeline(pipeline),
		session.WithIdentity(submit.Identity{UserID: *user, TenantID: *tenant}),
	)
	if err != nil {
		log.Fatalf("open session: %v", err)
	}

	runner, err := tui.NewRunner(sess)
	if err != nil {
		log.Fatalf("tui runner: %v", err)
	}

	receipt, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("run form: %v", err)
	}
	fmt.Printf("Acto %s registrado con el número %s\n", receipt.ActID, receipt.AssignedNumber)
	if receipt.StoragePath != "" {
		fmt.Printf("Documento: %s\n", receipt.StoragePath)
	}
}

func resolveBundle(dir, slug string) (schema.ActBundle, error) {
	if dir == "" {
		return testsupport.CompraventaBundle(), nil
	}
	store, err := schema.LoadFS(os.DirFS(dir))
	if err != nil {
		return schema.ActBundle{}, err
	}
	return store.Get(slug)
}

// demoStore persists nothing: it prints the payload and optionally writes the
// rendered document to disk so the flow can be exercised end to end.
type demoStore struct {
	output string
	serial int
}

func (s *demoStore) CreateGeneratedAct(_ context.Context, payload []byte, identity submit.Identity) (submit.CreatedAct, error) {
	s.serial++
	var pretty map[string]any
	if err := json.Unmarshal(payload, &pretty); err == nil {
		if formatted, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			fmt.Printf("— payload (%s@%s) —\n%s\n", identity.UserID, identity.TenantID, formatted)
		}
	}
	return submit.CreatedAct{
		ID:             fmt.Sprintf("demo-%04d", s.serial),
		AssignedNumber: fmt.Sprintf("2026-%06d", s.serial),
	}, nil
}

func (s *demoStore) UploadDocument(_ context.Context, actID string, document []byte) (string, error) {
	if s.output == "" {
		return "(not written)", nil
	}
	if err := os.WriteFile(s.output, document, 0o644); err != nil {
		return "", err
	}
	return s.output, nil
}

func (s *demoStore) RecordDocumentVersion(context.Context, string, string, map[string]string) error {
	return nil
}
