package enums

import "fmt"

// AuditAction maps to the audit_action enum in Postgres.
type AuditAction string

const (
	AuditActionLogin             AuditAction = "login"
	AuditActionLogout            AuditAction = "logout"
	AuditActionClientCreated     AuditAction = "client_created"
	AuditActionClientUpdated     AuditAction = "client_updated"
	AuditActionClientDeleted     AuditAction = "client_deleted"
	AuditActionLinkCreated       AuditAction = "link_created"
	AuditActionLinkUpdated       AuditAction = "link_updated"
	AuditActionLinkDeleted       AuditAction = "link_deleted"
	AuditActionReportViewed      AuditAction = "report_viewed"
	AuditActionOverviewGenerated AuditAction = "overview_generated"
)

var validAuditActions = []AuditAction{
	AuditActionLogin,
	AuditActionLogout,
	AuditActionClientCreated,
	AuditActionClientUpdated,
	AuditActionClientDeleted,
	AuditActionLinkCreated,
	AuditActionLinkUpdated,
	AuditActionLinkDeleted,
	AuditActionReportViewed,
	AuditActionOverviewGenerated,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value matches the canonical audit_action enum.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

// AuditStatus maps to the audit_status enum in Postgres.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

var validAuditStatuses = []AuditStatus{
	AuditStatusSuccess,
	AuditStatusFailure,
}

// String implements fmt.Stringer.
func (s AuditStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical audit_status enum.
func (s AuditStatus) IsValid() bool {
	for _, candidate := range validAuditStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAuditStatus converts raw input into AuditStatus.
func ParseAuditStatus(value string) (AuditStatus, error) {
	for _, candidate := range validAuditStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit status %q", value)
}
