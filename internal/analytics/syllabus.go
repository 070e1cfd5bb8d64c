package analytics

// StatusCompleted is the only topic status counted as done. Comparison is exact.
const StatusCompleted = "completed"

// syllabusKey is where the progress tree lives inside the user storage blob.
const syllabusKey = "syllabus"

// Syllabus is the schema-free progress tree: subject -> topic -> status.
// Clients write it through the user storage endpoints, so every level is
// type-checked on read and anything unexpected is skipped.
type Syllabus map[string]any

// TopicCount is the number of topics seen and how many of them are completed.
type TopicCount struct {
	Total     int
	Completed int
}

// Percent returns completed/total*100, or 0 when there are no topics.
func (c TopicCount) Percent() float64 {
	return percent(c.Completed, c.Total)
}

// SyllabusFromBlob extracts the progress tree from a storage blob. A missing
// or non-object "syllabus" entry yields an empty tree.
func SyllabusFromBlob(blob map[string]any) Syllabus {
	if blob == nil {
		return Syllabus{}
	}
	raw, ok := blob[syllabusKey].(map[string]any)
	if !ok {
		return Syllabus{}
	}
	return Syllabus(raw)
}

// Count walks every subject that is itself a mapping and tallies its topics.
func (s Syllabus) Count() TopicCount {
	var total TopicCount
	for _, entry := range s {
		topics, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		c := countTopics(topics)
		total.Total += c.Total
		total.Completed += c.Completed
	}
	return total
}

// SubjectCount tallies the topics of one subject. Absent or malformed
// subjects count as empty.
func (s Syllabus) SubjectCount(subject string) TopicCount {
	topics, ok := s[subject].(map[string]any)
	if !ok {
		return TopicCount{}
	}
	return countTopics(topics)
}

func countTopics(topics map[string]any) TopicCount {
	c := TopicCount{Total: len(topics)}
	for _, status := range topics {
		if str, ok := status.(string); ok && str == StatusCompleted {
			c.Completed++
		}
	}
	return c
}
