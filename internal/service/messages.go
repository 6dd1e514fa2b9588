package service

// Client-facing messages returned in the envelope.
const (
	MsgEmailTaken         = "Email is already registered."
	MsgRegisterSuccess    = "Registration successful."
	MsgUserNotFound       = "User not found."
	MsgInvalidCredentials = "Invalid email or password."
	MsgLoginSuccess       = "Login successful."
	MsgUserInactive       = "User account is inactive."
	MsgRoleInactive       = "Assigned role is inactive."
	MsgRoleMissing        = "Assigned role not found."

	MsgRefreshRequired = "Refresh token is required."
	MsgRefreshInvalid  = "Invalid or expired refresh token."
	MsgRefreshRevoked  = "Refresh token invalid or logged out already."
	MsgRefreshSuccess  = "Token refreshed successfully."
	MsgLogoutSuccess   = "Logged out successfully."
	MsgAccessChecked   = "Access check result"
	MsgAccessModules   = "User access modules fetched"

	MsgUserCreated      = "User created successfully."
	MsgUserReactivated  = "User reactivated successfully."
	MsgUsersFetched     = "Users fetched successfully."
	MsgUserFetched      = "User details fetched successfully."
	MsgUserUpdated      = "User updated successfully."
	MsgUserDeleted      = "User deleted successfully."
	MsgBulkSameDone     = "Users updated successfully with same data."
	MsgBulkDifferentOK  = "Users updated successfully with different data."
	MsgNothingToUpdate  = "Provide at least one field to update."
	MsgEmptyBulkPatch   = "Provide at least one field (firstName, lastName, role)."
	MsgSelfDelete       = "You cannot delete your own account."
	MsgBulkSystemGrant  = "You cannot assign Admin / Super Admin roles in bulk update."
	MsgBulkSelfRole     = "You cannot update your own role in bulk operation."
	MsgNoBulkEntries    = "At least one update entry is required."

	MsgRoleCreated      = "Role created successfully."
	MsgRoleNotFound     = "Role not found"
	MsgRolesFetched     = "Roles fetched successfully."
	MsgRoleFetched      = "Role details fetched successfully"
	MsgRoleUpdated      = "Role updated successfully"
	MsgRoleDeleted      = "Role deleted successfully"
	MsgEmptyModule      = "Module name cannot be empty"
	MsgShortRoleName    = "Role name must be at least 2 characters long."
	MsgRoleHasUsers     = "Role has assigned users. Provide transferRoleId to continue."
	MsgTransferMissing  = "Transfer roleId does not exist."
	MsgTransferInactive = "Cannot transfer users to an inactive role."
	MsgTransferSystem   = "Cannot transfer users to a system role."
	MsgTransferSelf     = "Cannot transfer users to the role being deleted."

	MsgAuditFetched = "Audit logs fetched successfully."
	MsgInvalidID    = "Invalid ID format."
)
