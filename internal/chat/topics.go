package chat

// TopicMessages is the single well-known bus topic every backend instance
// publishes persisted chat messages to and subscribes on. Routing to a
// recipient happens at delivery time against each instance's local
// registry, not through per-recipient topics.
const TopicMessages = "chat.messages.new"
