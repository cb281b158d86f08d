package reminder

import "time"

type DispatchStatus string

const (
	StatusSent    DispatchStatus = "sent"
	StatusFailed  DispatchStatus = "failed"
	StatusSkipped DispatchStatus = "skipped"
)

// DispatchResult is the outcome of one reminder attempt.
type DispatchResult struct {
	MembershipID int            `json:"membership_id"`
	Recipient    string         `json:"recipient,omitempty"`
	Status       DispatchStatus `json:"status"`
	Reason       string         `json:"reason,omitempty"`
}

func (r DispatchResult) skip(reason string) DispatchResult {
	r.Status = StatusSkipped
	r.Reason = reason
	return r
}

func (r DispatchResult) fail(err error) DispatchResult {
	r.Status = StatusFailed
	r.Reason = err.Error()
	return r
}

type Report struct {
	AsOf        time.Time        `json:"as_of"`
	HorizonDays int              `json:"horizon_days"`
	Selected    int              `json:"selected"`
	Sent        int              `json:"sent"`
	Failed      int              `json:"failed"`
	Skipped     int              `json:"skipped"`
	Results     []DispatchResult `json:"results"`
}

func (r *Report) add(res DispatchResult) {
	switch res.Status {
	case StatusSent:
		r.Sent++
	case StatusFailed:
		r.Failed++
	default:
		r.Skipped++
	}
	r.Results = append(r.Results, res)
}
