package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgInternal           = "Internal server error"
)

// IdempotencyKeyHeader carries the client key that makes review
// submission safe to retry
const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLength = 128
)

// Audit action constants
const (
	AuditActionReviewDeactivate = "review.deactivate"
	AuditActionReviewDelete     = "review.delete"
	AuditActionDisputeResolve   = "dispute.resolve"
	AuditActionCompanyCreate    = "company.create"
	AuditActionBranchCreate     = "branch.create"
)
