package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDispatchMetric records a completed request dispatch.
//
// This is the primary method for recording request/reply telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - endpoint: The endpoint that served the request (e.g., "lab-node-1")
//   - objectID: The target object (e.g., "pump1")
//   - method: The invoked method (e.g., "dispense")
//   - status: The reply status string (e.g., "Success")
//   - duration: Wall-clock time from dequeue to reply
//
// Example:
//
//	client.WriteDispatchMetric("lab-node-1", "pump1", "dispense", "Success", 42*time.Millisecond)
func (c *Client) WriteDispatchMetric(endpoint, objectID, method, status string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"dispatch",
		map[string]string{
			"endpoint":  endpoint,
			"object_id": objectID,
			"method":    method,
			"status":    status,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteQueueDepth records the current depth of an endpoint's inbox.
//
// Sampled periodically by the hosting process to track backlog growth.
//
// Parameters:
//   - endpoint: The endpoint whose queue is sampled
//   - depth: Total envelopes waiting across both tiers
func (c *Client) WriteQueueDepth(endpoint string, depth int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"queue_depth",
		map[string]string{
			"endpoint": endpoint,
		},
		map[string]interface{}{
			"depth": depth,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteReplyLatency records the client-side round trip for a request.
//
// Parameters:
//   - endpoint: The endpoint the request was sent to
//   - status: The terminal reply status
//   - latency: Time from Send to reply arrival
func (c *Client) WriteReplyLatency(endpoint, status string, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"reply_latency",
		map[string]string{
			"endpoint": endpoint,
			"status":   status,
		},
		map[string]interface{}{
			"latency_ms": float64(latency.Microseconds()) / 1000.0,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "lab-node-1"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
