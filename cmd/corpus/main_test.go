package main

import (
	"flag"
	"testing"

	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseKind(t *testing.T) {
	t.Run("accepts all kinds", func(t *testing.T) {
		cases := map[string]core.SourceKind{
			"document":     core.SourceKindDocument,
			"media":        core.SourceKindMedia,
			"website":      core.SourceKindWebsite,
			"website_page": core.SourceKindPage,
			"page":         core.SourceKindPage,
			"Document":     core.SourceKindDocument,
		}
		for input, want := range cases {
			kind, err := parseKind(input)
			require.NoError(t, err, input)
			assert.Equal(t, want, kind, input)
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := parseKind("podcast")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "podcast")
	})
}

func newScopeContext(t *testing.T, kind string, source uint64) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("kind", "", "")
	set.Uint64("source", 0, "")
	if kind != "" {
		require.NoError(t, set.Set("kind", kind))
	}
	if source != 0 {
		require.NoError(t, set.Set("source", "42"))
	}
	return cli.NewContext(nil, set, nil)
}

func TestParseScope(t *testing.T) {
	t.Run("no flags means unscoped", func(t *testing.T) {
		scope, err := parseScope(newScopeContext(t, "", 0))
		require.NoError(t, err)
		assert.Nil(t, scope)
	})

	t.Run("kind alone scopes by kind", func(t *testing.T) {
		scope, err := parseScope(newScopeContext(t, "media", 0))
		require.NoError(t, err)
		require.NotNil(t, scope)
		assert.Equal(t, retrieval.Scope{Kind: core.SourceKindMedia}, *scope)
	})

	t.Run("kind and source scope to one source", func(t *testing.T) {
		scope, err := parseScope(newScopeContext(t, "document", 42))
		require.NoError(t, err)
		require.NotNil(t, scope)
		assert.Equal(t, core.SourceKindDocument, scope.Kind)
		assert.Equal(t, core.ID(42), scope.SourceId)
	})

	t.Run("source without kind is an error", func(t *testing.T) {
		_, err := parseScope(newScopeContext(t, "", 42))
		require.Error(t, err)
	})
}

func TestSetupLogLevel(t *testing.T) {
	newLevelContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", "", "")
		_ = set.Set("log-level", level)
		return cli.NewContext(nil, set, nil)
	}

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			assert.NoError(t, setup(newLevelContext(level)), level)
		}
	})

	t.Run("rejects invalid level", func(t *testing.T) {
		err := setup(newLevelContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "verbose")
	})
}
