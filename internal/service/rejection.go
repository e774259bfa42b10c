package service

import (
	"errors"
	"fmt"
)

// RejectionKind 拒绝类别
type RejectionKind int

const (
	// RejectInput 输入缺失或格式错误，调用方修正后可重试
	RejectInput RejectionKind = iota
	// RejectPolicy 业务策略拒绝，条件不变时重试无意义
	RejectPolicy
)

// 拒绝原因码，对外稳定
const (
	ReasonMissingFields      = "missing_fields"
	ReasonInvalidInput       = "invalid_input"
	ReasonInvalidSession     = "invalid_session"
	ReasonInvalidDate        = "invalid_date"
	ReasonOutsideHours       = "outside_hours"
	ReasonNoActiveSession    = "no_active_session"
	ReasonSessionDisabled    = "session_disabled"
	ReasonVPNDetected        = "vpn_detected"
	ReasonPrivateBrowsing    = "private_browsing"
	ReasonIPUnavailable      = "ip_unavailable"
	ReasonIPNotRegistered    = "ip_not_registered"
	ReasonIPNotVerified      = "ip_not_verified"
	ReasonMissingFingerprint = "missing_fingerprint"
	ReasonDeviceAlreadyUsed  = "device_already_used"
	ReasonEmailAlreadyUsed   = "email_already_used"
	ReasonNoActiveLocations  = "no_active_locations"
	ReasonOutOfRange         = "out_of_range"
	ReasonAlreadyMarked      = "already_marked"
)

// Rejection 签到被拒绝，携带原因码与面向用户的说明
type Rejection struct {
	Kind    RejectionKind
	Reason  string
	Message string

	UsedEmail      string
	DistanceMeters *int
	RadiusMeters   *int
	Indicators     []string
	Confidence     string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("签到被拒绝 [%s]: %s", r.Reason, r.Message)
}

// AsRejection 从错误链中提取 Rejection
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func inputRejection(reason, msg string) *Rejection {
	return &Rejection{Kind: RejectInput, Reason: reason, Message: msg}
}

func policyRejection(reason, msg string) *Rejection {
	return &Rejection{Kind: RejectPolicy, Reason: reason, Message: msg}
}

func intPtr(v int) *int { return &v }
