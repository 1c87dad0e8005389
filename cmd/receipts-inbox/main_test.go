package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm/anthropic"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm/openai"
	"github.com/joseph-ayodele/receipts-inbox/internal/pipeline"
	"github.com/joseph-ayodele/receipts-inbox/internal/processor"
)

func TestNewCompleter(t *testing.T) {
	log := zap.NewNop()

	c, err := newCompleter(common.LLMConfig{Provider: "none"}, log)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = newCompleter(common.LLMConfig{Provider: "openai", APIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, c)

	c, err = newCompleter(common.LLMConfig{Provider: "anthropic", APIKey: "k"}, log)
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Client{}, c)

	_, err = newCompleter(common.LLMConfig{Provider: "bard"}, log)
	assert.Error(t, err)
}

func TestLoadTaxonomy_Default(t *testing.T) {
	logger = zap.NewNop()
	tax, err := loadTaxonomy(common.CategoryConfig{})
	require.NoError(t, err)
	assert.NotNil(t, tax)

	_, err = loadTaxonomy(common.CategoryConfig{KeywordsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestProcessFiles_KeepsOrderAndSkipsBadFiles(t *testing.T) {
	logger = zap.NewNop()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}
	files := []string{
		write("a.json", `{"from":"receipts@cornerdeli.com","subject":"Receipt","text_body":"Thank you for shopping at Corner Deli\nTotal $8.40"}`),
		write("b.json", `{broken`),
		write("c.json", `{"from":"orders@bluebottle.com","subject":"Order","text_body":"Your purchase from Blue Bottle Coffee\nTotal: $5.25"}`),
	}

	p := processor.New(nil, pipeline.New(pipeline.Config{}, nil, nil, nil), nil, nil)
	recs, err := processFiles(context.Background(), p, files, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.NotNil(t, recs[0].Vendor)
	assert.Equal(t, "Corner Deli", *recs[0].Vendor)
	require.NotNil(t, recs[1].Vendor)
	assert.Equal(t, "Blue Bottle Coffee", *recs[1].Vendor)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(common.NewAppError("INVALID_MESSAGE", "bad envelope", common.ErrInvalidInput)))
	assert.Equal(t, 1, exitCode(common.NewAppError("PERSISTENCE_ERROR", "insert failed", common.ErrPersistence)))
}
