package hermes

import "strings"

const (
	SubjectOptimizeRequest = "tradeoff.optimize.request"
	SubjectStats           = "tradeoff.stats"
	SubjectCaseWildcard    = "tradeoff.case.>"

	ClientName = "tradeoff"
	QueueGroup = "tradeoff-service"

	StreamName   = "TRADEOFF_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

const casePrefix = "tradeoff.case."

func caseSubject(caseID, event string) string { return casePrefix + caseID + "." + event }

func SubjectCaseCreated(caseID string) string   { return caseSubject(caseID, "created") }
func SubjectCaseEvaluated(caseID string) string { return caseSubject(caseID, "evaluated") }
func SubjectCaseModified(caseID string) string  { return caseSubject(caseID, "modified") }
func SubjectCaseOptimized(caseID string) string { return caseSubject(caseID, "optimized") }
func SubjectCaseDeleted(caseID string) string   { return caseSubject(caseID, "deleted") }
func SubjectCaseFailed(caseID string) string    { return caseSubject(caseID, "failed") }

// ParseCaseSubject splits a lifecycle subject into case id and event name.
func ParseCaseSubject(subject string) (caseID, event string, ok bool) {
	rest, found := strings.CutPrefix(subject, casePrefix)
	if !found {
		return "", "", false
	}
	caseID, event, found = strings.Cut(rest, ".")
	if !found || caseID == "" || event == "" || strings.Contains(event, ".") {
		return "", "", false
	}
	return caseID, event, true
}
