/*
Copyright 2025 The Selfheal Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the PR self-healing agent for CI. It analyzes the
// branch diff, asks a model for a corrective patch, and pushes the fix as a
// marker-tagged commit. The process fails open: every outcome exits zero
// except a committed fix whose push failed.
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
	"selfheal.dev/selfheal/gitcli"
	"selfheal.dev/selfheal/heal"
	"selfheal.dev/selfheal/notify"
)

type config struct {
	// RepoDir is the checkout to heal. Empty means the current directory,
	// which is where CI runs this.
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
	log.Info("Self-healing agent started")

	repo := gitcli.New(cfg.RepoDir)
	repo.BaseRef = cfg.BaseRef
	repo.Name = heal.BotName
	repo.Email = heal.BotEmail

	agent := &heal.Agent{
		Repo: repo,
		NewCompleter: func(ctx context.Context) (completions.Completer, error) {
			return completions.New(ctx, &cfg.AI)
		},
	}

	res := agent.Run(ctx)

	// The reason goes to stdout for the CI job log as well as the logger.
	fmt.Printf("[%s] %s\n", res.Outcome, res.Reason)

	log = log.With("outcome", res.Outcome.String())
	if res.Err != nil {
		log = log.With("error", res.Err.Error())
	}
	log.Info(res.Reason)

	notify.New(cfg.GitHub).Comment(ctx, notify.HealSummary(res.Outcome.String(), res.Reason))

	os.Exit(res.ExitCode())
}
