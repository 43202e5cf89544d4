package sysinfo

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/gauchoride-api/internal/config"
)

func stubBuildInfo(t *testing.T, settings ...debug.BuildSetting) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
	t.Cleanup(func() { readBuildInfo = prev })
}

func TestProviderReturnsValuesUnchanged(t *testing.T) {
	info := SystemInfo{
		SpringH2ConsoleEnabled: true,
		ShowSwaggerUILink:      false,
		StartQtrYYYYQ:          "20231",
		EndQtrYYYYQ:            "20234",
		SourceRepo:             "https://github.com/ucsb-cs156/proj-gauchoride",
		CommitMessage:          "Merge pull request #42\n\nfix footer ✓",
		CommitID:               "0123456789abcdef",
		GithubURL:              "https://github.com/ucsb-cs156/proj-gauchoride/commit/0123456789abcdef",
	}

	got := NewProvider(info).Get(context.Background())

	assert.Equal(t, info, got)
}

func TestProviderHandsOutCopies(t *testing.T) {
	p := NewProvider(SystemInfo{CommitID: "abc"})

	got := p.Get(context.Background())
	got.CommitID = "changed"

	assert.Equal(t, "abc", p.Get(context.Background()).CommitID)
}

func TestJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(SystemInfo{
		SpringH2ConsoleEnabled: true,
		ShowSwaggerUILink:      true,
		StartQtrYYYYQ:          "20231",
		EndQtrYYYYQ:            "20234",
		SourceRepo:             "repo",
		CommitMessage:          "msg",
		CommitID:               "id",
		GithubURL:              "url",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"springH2ConsoleEnabled": true,
		"showSwaggerUILink": true,
		"startQtrYYYYQ": "20231",
		"endQtrYYYYQ": "20234",
		"sourceRepo": "repo",
		"commitMessage": "msg",
		"commitId": "id",
		"githubUrl": "url"
	}`, string(data))
}

func TestFromConfig(t *testing.T) {
	t.Run("copies configured values", func(t *testing.T) {
		stubBuildInfo(t)

		info := FromConfig(&config.Config{
			H2ConsoleEnabled:  true,
			ShowSwaggerUILink: true,
			StartQuarter:      "20221",
			EndQuarter:        "20224",
			SourceRepo:        "https://github.com/ucsb-cs156/proj-gauchoride",
			CommitMessage:     "initial commit",
			CommitID:          "abc1234",
			CommitURL:         "https://example.com/c/abc1234",
		})

		assert.Equal(t, SystemInfo{
			SpringH2ConsoleEnabled: true,
			ShowSwaggerUILink:      true,
			StartQtrYYYYQ:          "20221",
			EndQtrYYYYQ:            "20224",
			SourceRepo:             "https://github.com/ucsb-cs156/proj-gauchoride",
			CommitMessage:          "initial commit",
			CommitID:               "abc1234",
			GithubURL:              "https://example.com/c/abc1234",
		}, info)
	})

	t.Run("derives commit url from source repo", func(t *testing.T) {
		stubBuildInfo(t)

		info := FromConfig(&config.Config{
			SourceRepo: "https://github.com/ucsb-cs156/proj-gauchoride.git",
			CommitID:   "abc1234",
		})

		assert.Equal(t, "https://github.com/ucsb-cs156/proj-gauchoride/commit/abc1234", info.GithubURL)
	})

	t.Run("falls back to vcs revision", func(t *testing.T) {
		stubBuildInfo(t,
			debug.BuildSetting{Key: "vcs", Value: "git"},
			debug.BuildSetting{Key: "vcs.revision", Value: "feedbeef"},
		)

		info := FromConfig(&config.Config{SourceRepo: "https://github.com/ucsb-cs156/proj-gauchoride/"})

		assert.Equal(t, "feedbeef", info.CommitID)
		assert.Equal(t, "https://github.com/ucsb-cs156/proj-gauchoride/commit/feedbeef", info.GithubURL)
	})

	t.Run("leaves commit fields empty when unknown", func(t *testing.T) {
		stubBuildInfo(t)

		info := FromConfig(&config.Config{SourceRepo: "https://github.com/ucsb-cs156/proj-gauchoride"})

		assert.Empty(t, info.CommitID)
		assert.Empty(t, info.GithubURL)
	})
}
