package hermes

import "strings"

const (
	SubjectCPURequest = "pow2.cpu.request"

	// QueueGroup spreads cpu requests across pow2 replicas.
	QueueGroup = "pow2"

	StreamName   = "POW2_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

var StreamSubjects = []string{"pow2.cpu.>", "pow2.season.>"}

func SubjectCPUCalculated(requestID string) string { return "pow2.cpu." + requestID + ".calculated" }
func SubjectCPUFailed(requestID string) string     { return "pow2.cpu." + requestID + ".failed" }

func SubjectSeasonUpdated(slug string) string { return "pow2.season." + slug + ".updated" }

// ValidToken reports whether s can stand as a single subject token: request
// ids and season slugs are spliced into subjects, so they must not contain
// separators, wildcards or whitespace.
func ValidToken(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".*> \t\r\n")
}

// validPublishSubject rejects empty tokens and wildcards, which NATS does
// not accept on publish.
func validPublishSubject(subject string) bool {
	for _, tok := range strings.Split(subject, ".") {
		if !ValidToken(tok) {
			return false
		}
	}
	return true
}
