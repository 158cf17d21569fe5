package mqtt

import "strings"

// DefaultTopicPrefix is the root used when the configured prefix is empty.
const DefaultTopicPrefix = "huestream"

// Topics provides builders for huestream MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
// All topics live under a configurable prefix:
//
//	topics := mqtt.NewTopics("huestream")
//	topics.Status()       // "huestream/status"
//	topics.Stats()        // "huestream/stats"
//	topics.ColorCommand() // "huestream/command/color"
type Topics struct {
	prefix string
}

// NewTopics creates topic builders under prefix. Leading and trailing
// slashes are trimmed; an empty prefix selects DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// Status returns the retained online/offline status topic (also the LWT).
//
// Example: huestream/status
func (t Topics) Status() string {
	return t.Prefix() + "/status"
}

// Stats returns the topic for periodic stream statistics.
//
// Example: huestream/stats
func (t Topics) Stats() string {
	return t.Prefix() + "/stats"
}

// ColorCommand returns the topic remote producers publish colours to.
//
// Example: huestream/command/color
func (t Topics) ColorCommand() string {
	return t.Prefix() + "/command/color"
}
