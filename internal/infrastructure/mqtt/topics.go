package mqtt

import "fmt"

// Topic prefixes for the LabRelay MQTT topic hierarchy.
//
// Message traffic uses the flat scheme: labrelay/{kind}/{endpoint}
// where kind is "request" or "reply" and endpoint is the receiving node.
const (
	// TopicPrefix is the base for all LabRelay topics.
	TopicPrefix = "labrelay"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "labrelay/system"
)

// Topics provides builders for LabRelay MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	reqTopic := topics.Request("lab-node-1")
//	// Returns: "labrelay/request/lab-node-1"
type Topics struct{}

// Request returns the topic on which an endpoint receives requests.
//
// Example: labrelay/request/lab-node-1
func (Topics) Request(endpoint string) string {
	return fmt.Sprintf("%s/request/%s", TopicPrefix, endpoint)
}

// Reply returns the topic on which an endpoint receives replies.
//
// Example: labrelay/reply/operator
func (Topics) Reply(endpoint string) string {
	return fmt.Sprintf("%s/reply/%s", TopicPrefix, endpoint)
}

// Catalog returns the topic on which an endpoint publishes its discovery
// catalog, retained so late subscribers see the latest registration.
//
// Example: labrelay/catalog/lab-node-1
func (Topics) Catalog(endpoint string) string {
	return fmt.Sprintf("%s/catalog/%s", TopicPrefix, endpoint)
}

// SystemStatus returns the topic for node online/offline status.
// Published retained on connect and as LWT on unexpected disconnect.
//
// Example: labrelay/system/status/labrelay-core
func (Topics) SystemStatus(clientID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefixSystem, clientID)
}

// AllRequests returns a wildcard matching every request topic.
func (Topics) AllRequests() string {
	return TopicPrefix + "/request/+"
}

// AllReplies returns a wildcard matching every reply topic.
func (Topics) AllReplies() string {
	return TopicPrefix + "/reply/+"
}

// AllCatalogs returns a wildcard matching every catalog topic.
func (Topics) AllCatalogs() string {
	return TopicPrefix + "/catalog/+"
}

// AllStatus returns a wildcard matching every node status topic.
func (Topics) AllStatus() string {
	return TopicPrefixSystem + "/status/+"
}

// AllTopics returns a wildcard matching the entire LabRelay hierarchy.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
