package util

import (
	"regexp"
)

// Statutory identifier formats. Format checks only; registry lookups against
// the issuing authorities are a separate concern handled at review time.
var (
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarPattern = regexp.MustCompile(`^[2-9][0-9]{11}$`)
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
	pinCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	mobilePattern  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// IsValidPAN checks the 10-character permanent account number format (e.g. ABCDE1234F).
func IsValidPAN(pan string) bool {
	return panPattern.MatchString(pan)
}

// IsValidAadhaar checks the 12-digit Aadhaar number format.
func IsValidAadhaar(aadhaar string) bool {
	return aadhaarPattern.MatchString(aadhaar)
}

// IsValidGSTIN checks the 15-character GST identification number format
// (e.g. 29ABCDE1234F1Z5). Characters 3-12 embed the holder's PAN.
func IsValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(gstin)
}

// IsValidPINCode checks the 6-digit postal index number format.
func IsValidPINCode(pin string) bool {
	return pinCodePattern.MatchString(pin)
}

// IsValidMobile checks the 10-digit Indian mobile number format.
func IsValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}
