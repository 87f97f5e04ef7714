package learner

import "time"

// ErrorTag labels why an attempt failed.
type ErrorTag string

const (
	TagTestFailures         ErrorTag = "test_failures"
	TagSuboptimalComplexity ErrorTag = "suboptimal_complexity"
)

// Attempt is one evaluated work item. Attempts are values: once appended
// to a State they are never edited or removed.
type Attempt struct {
	TopicID           string
	ItemID            string
	Difficulty        int
	Success           bool
	PassRate          float64
	ComplexityMatched bool
	Duration          time.Duration
	Timestamp         time.Time
	Strategy          string
}

// ErrorTags returns the tags a failed attempt contributes to the error
// histogram. Successful attempts contribute none.
func (a Attempt) ErrorTags() []ErrorTag {
	if a.Success {
		return nil
	}
	var tags []ErrorTag
	if a.PassRate < 1.0 {
		tags = append(tags, TagTestFailures)
	}
	if !a.ComplexityMatched {
		tags = append(tags, TagSuboptimalComplexity)
	}
	return tags
}
