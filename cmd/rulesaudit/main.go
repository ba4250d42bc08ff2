/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the semantic rules auditor for CI. It submits the
// branch diff to a model and blocks the PR only when the model reports an
// explicit rule violation; every other outcome, failures included, lets the
// PR proceed to human review.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"

	"selfheal.dev/selfheal/agents/completions"
	"selfheal.dev/selfheal/audit"
	"selfheal.dev/selfheal/gitcli"
	"selfheal.dev/selfheal/notify"
)

type config struct {
	RepoDir string `env:"REPO_DIR"`
	BaseRef string `env:"BASE_REF,default=origin/main"`

	AI     completions.Config
	GitHub notify.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	log := clog.FromContext(ctx)
	log.Info("Rules auditor started")

	repo := gitcli.New(cfg.RepoDir)
	repo.BaseRef = cfg.BaseRef

	agent := &audit.Agent{
		Repo: repo,
		NewCompleter: func(ctx context.Context) (completions.Completer, error) {
			return completions.New(ctx, &cfg.AI)
		},
	}

	res := agent.Run(ctx)

	// Echo the model's full response so reviewers see the reasoning in the
	// job log even when no comment is posted.
	if res.Raw != "" {
		fmt.Println(res.Raw)
	}
	fmt.Printf("[%s] %s\n", res.Outcome, res.Reason)

	log = log.With("outcome", res.Outcome.String())
	if res.Err != nil {
		log = log.With("error", res.Err.Error())
	}
	log.Info(res.Reason)

	var explanation, recommendation string
	if res.Verdict != nil {
		explanation = res.Verdict.Explanation
		recommendation = res.Verdict.Recommendation
	}
	notify.New(cfg.GitHub).Comment(ctx, notify.AuditSummary(res.Outcome.String(), res.Reason, explanation, recommendation))

	os.Exit(res.ExitCode())
}
