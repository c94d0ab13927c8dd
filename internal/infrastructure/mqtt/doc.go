// Package mqtt provides MQTT client connectivity for LabRelay Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// LabRelay uses MQTT as the message bus connecting lab nodes. Each node
// receives requests on labrelay/request/{endpoint} and replies on
// labrelay/reply/{endpoint}; the broker (Mosquitto) decouples operator
// consoles from the nodes that host instruments.
//
//	Operator Console ↔ MQTT Broker ↔ Lab Nodes
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to this node's request topic
//	err = client.Subscribe(mqtt.Topics{}.Request("lab-node-1"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a reply back to the requesting endpoint
//	topic := mqtt.Topics{}.Reply("operator")
//	client.Publish(topic, payload, 1, false)
package mqtt
