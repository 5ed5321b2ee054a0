package domain

import "time"

type Product struct {
	UUID              string     `db:"uuid"`
	Created           time.Time  `db:"created"`
	CreatedBy         string     `db:"created_by"`
	Modified          time.Time  `db:"modified"`
	ModifiedBy        string     `db:"modified_by"`
	UserID            string     `db:"user_id"`
	ProductName       string     `db:"product_name"`
	OpenedDate        time.Time  `db:"opened_date"`
	ClosedDate        *time.Time `db:"closed_date"`
	ClosedReason      *string    `db:"closed_reason"`
	ClosedReasonOther *string    `db:"closed_reason_other"`
}

func (p Product) IsOpen() bool {
	return p.ClosedDate == nil
}

// TermsAgreement rows are append-only.
type TermsAgreement struct {
	UUID       string    `db:"uuid"`
	Created    time.Time `db:"created"`
	CreatedBy  string    `db:"created_by"`
	Modified   time.Time `db:"modified"`
	ModifiedBy string    `db:"modified_by"`
	UserID     string    `db:"user_id"`

	ProductName string `db:"product_name"`

	Version           *int       `db:"version"`
	AcceptedTimestamp *time.Time `db:"accepted_timestamp"`

	TouVersion           *int       `db:"tou_version"`
	TouAcceptedTimestamp *time.Time `db:"tou_accepted_timestamp"`

	PatientNoticeVersion           *int       `db:"patient_notice_version"`
	PatientNoticeAcceptedTimestamp *time.Time `db:"patient_notice_accepted_timestamp"`
}

// StampDefaults fills in the acceptance time of every version given without one.
func (t *TermsAgreement) StampDefaults(now time.Time) {
	if t.Version != nil && *t.Version != 0 && t.AcceptedTimestamp == nil {
		ts := now
		t.AcceptedTimestamp = &ts
	}
	if t.TouVersion != nil && *t.TouVersion != 0 && t.TouAcceptedTimestamp == nil {
		ts := now
		t.TouAcceptedTimestamp = &ts
	}
	if t.PatientNoticeVersion != nil && *t.PatientNoticeVersion != 0 && t.PatientNoticeAcceptedTimestamp == nil {
		ts := now
		t.PatientNoticeAcceptedTimestamp = &ts
	}
}

func (t TermsAgreement) effectiveVersion() int {
	if t.Version == nil {
		return -1
	}
	return *t.Version
}
