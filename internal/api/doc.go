// Package api provides the HTTP REST API and WebSocket server for LabRelay Core.
//
// This package provides:
//   - REST endpoints for submitting requests, retrieving replies, and
//     browsing the instrument catalog
//   - WebSocket hub for real-time reply broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between operator tooling (consoles, scripts, web
// dashboards) and the local dispatch client. Submitted requests flow through
// the transport to remote lab nodes, and terminal replies flow back to the
// client where they are broadcast to WebSocket subscribers.
//
// # Request Lifecycle
//
// POST /api/v1/requests submits a request. With ?wait=true the handler blocks
// until the terminal reply arrives; without it, the handler returns the
// request ID immediately and the caller retrieves the reply later via
// GET /api/v1/replies/{request_id} or the WebSocket stream.
package api
