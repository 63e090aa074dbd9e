package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL. The frontend maps these to messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== KYC (KYC_) ====================
	KYCSubmissionNotFound   = "KYC_SUBMISSION_NOT_FOUND"
	KYCUnknownSlot          = "KYC_UNKNOWN_SLOT"
	KYCDocumentNotFound     = "KYC_DOCUMENT_NOT_FOUND"
	KYCIncompleteSubmission = "KYC_INCOMPLETE_SUBMISSION"
	KYCConcurrentUpdate     = "KYC_CONCURRENT_UPDATE"
	KYCAlreadyVerified      = "KYC_ALREADY_VERIFIED"
	KYCIdentityLocked       = "KYC_IDENTITY_LOCKED"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadSlotBusy        = "UPLOAD_SLOT_BUSY"
	UploadTimeout         = "UPLOAD_TIMEOUT"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Storage (STORAGE_) ====================
	StorageUnavailable = "STORAGE_UNAVAILABLE"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
