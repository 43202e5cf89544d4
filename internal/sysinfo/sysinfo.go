// Package sysinfo describes the running deployment for the UI footer and
// diagnostics endpoints.
package sysinfo

import (
	"context"
	"strings"

	"github.com/KasumiMercury/gauchoride-api/internal/config"
)

// SystemInfo is a read-only record of deployment flags and build provenance.
// Zero values mean "not configured".
type SystemInfo struct {
	SpringH2ConsoleEnabled bool `json:"springH2ConsoleEnabled"`
	ShowSwaggerUILink      bool `json:"showSwaggerUILink"`

	StartQtrYYYYQ string `json:"startQtrYYYYQ"`
	EndQtrYYYYQ   string `json:"endQtrYYYYQ"`
	SourceRepo    string `json:"sourceRepo"`
	CommitMessage string `json:"commitMessage"`
	CommitID      string `json:"commitId"`
	GithubURL     string `json:"githubUrl"`
}

// FromConfig builds the record from configuration, filling commit data from
// the binary's VCS stamp when the environment does not provide it.
func FromConfig(cfg *config.Config) SystemInfo {
	commitID := cfg.CommitID
	if commitID == "" {
		if rev, ok := vcsRevision(); ok {
			commitID = rev
		}
	}

	return SystemInfo{
		SpringH2ConsoleEnabled: cfg.H2ConsoleEnabled,
		ShowSwaggerUILink:      cfg.ShowSwaggerUILink,
		StartQtrYYYYQ:          cfg.StartQuarter,
		EndQtrYYYYQ:            cfg.EndQuarter,
		SourceRepo:             cfg.SourceRepo,
		CommitMessage:          cfg.CommitMessage,
		CommitID:               commitID,
		GithubURL:              commitURL(cfg.CommitURL, cfg.SourceRepo, commitID),
	}
}

// commitURL prefers an explicit URL and otherwise links the commit under the
// source repository.
func commitURL(explicit, repo, commitID string) string {
	if explicit != "" {
		return explicit
	}
	if repo == "" || commitID == "" {
		return ""
	}

	repo = strings.TrimSuffix(strings.TrimSuffix(repo, "/"), ".git")
	return repo + "/commit/" + commitID
}

// Provider hands out copies of a fixed SystemInfo.
type Provider struct {
	info SystemInfo
}

func NewProvider(info SystemInfo) *Provider {
	return &Provider{info: info}
}

func (p *Provider) Get(_ context.Context) SystemInfo {
	return p.info
}
