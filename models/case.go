package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case statuses a case may hold during its lifecycle
const (
	CaseStatusFiled    = "filed"
	CaseStatusAdmitted = "admitted"
	CaseStatusHearing  = "hearing"
	CaseStatusJudgment = "judgment"
	CaseStatusClosed   = "closed"
	CaseStatusArchived = "archived"
)

// CaseStatuses lists every valid case status
var CaseStatuses = []string{
	CaseStatusFiled,
	CaseStatusAdmitted,
	CaseStatusHearing,
	CaseStatusJudgment,
	CaseStatusClosed,
	CaseStatusArchived,
}

// ValidCaseStatus reports whether s is a member of the fixed status set
func ValidCaseStatus(s string) bool {
	for _, v := range CaseStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CaseDetails        `json:"case" bson:"case"`
	Version int32              `json:"__v" bson:"__v"`
}

// CaseDetails holds the structure for the inner case details
type CaseDetails struct {
	CaseNumber string `json:"caseNumber" bson:"caseNumber"` // unique, immutable once filed
	Title      string `json:"title" bson:"title"`
	Status     string `json:"status" bson:"status"`
	Priority   string `json:"priority" bson:"priority"`
	Stage      string `json:"stage" bson:"stage"`

	FilerID string `json:"filerID" bson:"filerID"` // the user who filed this case

	FilingDate      primitive.DateTime  `json:"filingDate" bson:"filingDate"`
	AdmissionDate   *primitive.DateTime `json:"admissionDate,omitempty" bson:"admissionDate,omitempty"`
	JudgmentDate    *primitive.DateTime `json:"judgmentDate,omitempty" bson:"judgmentDate,omitempty"`
	NextHearingDate *primitive.DateTime `json:"nextHearingDate,omitempty" bson:"nextHearingDate,omitempty"`

	// Denormalized counters, mutated with $inc at the store layer only
	HearingCount  int `json:"hearingCount" bson:"hearingCount"`
	ViewCount     int `json:"viewCount" bson:"viewCount"`
	BookmarkCount int `json:"bookmarkCount" bson:"bookmarkCount"`

	Verdict     string `json:"verdict,omitempty" bson:"verdict,omitempty"`
	IsPublic    bool   `json:"isPublic" bson:"isPublic"`
	IsSensitive bool   `json:"isSensitive" bson:"isSensitive"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
