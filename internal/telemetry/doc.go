// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry exports feed metrics in Prometheus format.
//
// Metrics implements anchor.Recorder, so scroll corrections and dropped
// stale events are counted by mode and kind. History paging and
// conversation switches are recorded by the chat app.
//
// # Usage
//
//	m := telemetry.New()
//	ctrl := anchor.New(opts, anchor.WithRecorder(m))
//	go m.Serve(ctx, ":9464") // GET /metrics
package telemetry
