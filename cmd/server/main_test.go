package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListTools(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, listTools(context.Background(), catalog(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 9)
	require.True(t, strings.HasPrefix(lines[0], "ask_question\t"))
	require.Contains(t, buf.String(), "export_chart\t")
}

func TestListTools_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	require.ErrorIs(t, listTools(ctx, catalog(), &buf), context.Canceled)
	require.Zero(t, buf.Len())
}
