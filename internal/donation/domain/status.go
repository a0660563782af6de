package domain

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusSettlement Status = "settlement"
	StatusCapture    Status = "capture"
	StatusChallenge  Status = "challenge"
	StatusAuthorize  Status = "authorize"
	StatusExpire     Status = "expire"
	StatusCancel     Status = "cancel"
	StatusDeny       Status = "deny"
	StatusFailure    Status = "failure"
)

// finalizedSuccessStatuses is mirrored by the conditional update in the
// repository.
var finalizedSuccessStatuses = []Status{StatusSettlement, StatusCapture}

// IsFinalizedSuccess reports whether funds are confirmed received.
func (s Status) IsFinalizedSuccess() bool {
	for _, st := range finalizedSuccessStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s Status) IsFinalizedFailure() bool {
	switch s {
	case StatusExpire, StatusCancel, StatusDeny, StatusFailure:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s.IsFinalizedSuccess() || s.IsFinalizedFailure()
}

// ParseStatus maps a gateway transaction status, qualified by its fraud
// status, onto the donation lifecycle.
func ParseStatus(transactionStatus, fraudStatus string) (Status, error) {
	fraud := strings.ToLower(strings.TrimSpace(fraudStatus))
	switch strings.ToLower(strings.TrimSpace(transactionStatus)) {
	case "settlement":
		return StatusSettlement, nil
	case "capture":
		switch fraud {
		case "challenge":
			return StatusChallenge, nil
		case "deny":
			return StatusDeny, nil
		}
		return StatusCapture, nil
	case "pending":
		return StatusPending, nil
	case "authorize":
		return StatusAuthorize, nil
	case "deny":
		return StatusDeny, nil
	case "cancel":
		return StatusCancel, nil
	case "expire":
		return StatusExpire, nil
	case "failure":
		return StatusFailure, nil
	case "":
		return "", ErrMissingStatus
	default:
		return "", ErrInvalidStatus
	}
}
