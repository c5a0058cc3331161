package book

// DefaultTopics is the enumerated topic set produced by topic modeling of the summaries.
var DefaultTopics = []string{
	"biography",
	"business",
	"science",
	"gender",
	"religion",
	"race",
	"health",
	"world war II",
	"relationship",
	"art",
	"family",
	"british monarch",
}

// TopicSet is a set of allowed topic labels. The zero value allows any topic.
type TopicSet struct {
	allowed map[string]struct{}
}

// NewTopicSet creates a set from labels. Blank labels are ignored.
func NewTopicSet(labels ...string) TopicSet {
	if len(labels) == 0 {
		return TopicSet{}
	}
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l != "" {
			m[l] = struct{}{}
		}
	}
	return TopicSet{allowed: m}
}

// Allows reports whether topic belongs to the set.
func (s TopicSet) Allows(topic string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[topic]
	return ok
}

// TopicCount is the number of catalog books carrying a topic.
type TopicCount struct {
	Topic string
	Count int
}
