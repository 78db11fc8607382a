// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfeed/internal/anchor"
)

func TestMetrics_RecordsCorrections(t *testing.T) {
	m := New()
	m.Correction(anchor.ModeBottom, 3)
	m.Correction(anchor.ModeBottom, -2)
	m.Correction(anchor.ModePreserveTop, 60)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.corrections.WithLabelValues("bottom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.corrections.WithLabelValues("preserve-top")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.corrections.WithLabelValues("free")))
}

func TestMetrics_RecordsDropsPagesSwitches(t *testing.T) {
	m := New()
	m.Dropped("growth")
	m.Dropped("growth")
	m.Dropped("settle")
	m.PageLoaded(30, 12*time.Millisecond)
	m.Switched()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dropped.WithLabelValues("growth")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("settle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.switches))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Correction(anchor.ModeFree, 5)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `chatfeed_scroll_corrections_total{mode="free"} 1`)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestMetrics_ServeStopsOnCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
