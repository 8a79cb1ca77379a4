package kafka

// TopicPrefix namespaces every topic this service writes.
const TopicPrefix = "revix"

// Topic builds a topic name of the form revix.<domain>.<action>.
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
