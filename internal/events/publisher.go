package events

// Publisher publishes events to SSE clients
type Publisher struct {
	sse *SSEServer
}

// NewPublisher creates a publisher on top of sse
func NewPublisher(sse *SSEServer) *Publisher {
	return &Publisher{sse: sse}
}

// SSEServer returns the hub behind the publisher
func (p *Publisher) SSEServer() *SSEServer {
	return p.sse
}

// Publish publishes an event
func (p *Publisher) Publish(event *Event) {
	if p != nil && p.sse != nil {
		p.sse.Broadcast(event)
	}
}

// PublishWidget publishes a widget change for its owner
func (p *Publisher) PublishWidget(eventType EventType, userID, widgetID string, data interface{}) {
	p.Publish(NewEvent(eventType, data).ForUser(userID).WithWidget(widgetID))
}
