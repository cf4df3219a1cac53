// Copyright (c) 2026 AgroviaTech. All rights reserved.
// Author: dev@agroviatech.com

package agrirequest

// Summary is the requester's view of their latest request.
type Summary struct {
	Request             *Request `json:"request"`
	HasPendingRequest   bool     `json:"has_pending_request"`
	HasApprovedRequest  bool     `json:"has_approved_request"`
	HasRejectedRequest  bool     `json:"has_rejected_request"`
	CanCreateNewRequest bool     `json:"can_create_new_request"`
}

// Summarize derives the predicates from the latest request, which may be nil.
// It is evaluated on the record loaded for each call, so an approval or a
// rejection shows up on the requester's next read.
func Summarize(latest *Request) Summary {
	summary := Summary{Request: latest.Clone(), CanCreateNewRequest: true}
	if latest == nil {
		return summary
	}

	summary.HasPendingRequest = latest.Status == StatusPending
	summary.HasApprovedRequest = latest.Status == StatusApproved
	summary.HasRejectedRequest = latest.Status == StatusRejected
	summary.CanCreateNewRequest = summary.HasRejectedRequest
	return summary
}
