package entity

// Tag is a label attached to an entity by the tagging subsystem. Plans are
// decorated with their tags on read; assignment lives outside this service.
type Tag struct {
	ID    string
	Name  string
	Color string
}

// RenderedMessage is the output of the template collaborator, ready for a
// notifier to deliver.
type RenderedMessage struct {
	Subject string
	Body    string
}
