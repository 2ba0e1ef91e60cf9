package validation

import (
	"strings"

	"github.com/collegepedia/collegepedia/internal/auth"
)

// protectedMetadataKeys may only be written by the server.
var protectedMetadataKeys = []string{auth.MetaRole}

// SignUpRequest mirrors the fields needed for sign-up validation.
type SignUpRequest struct {
	Email    string
	Password string
	FullName string
}

// ValidateSignUpRequest validates a sign-up request. Names listed in
// reserved cannot be claimed, since a display name can grant a role.
func ValidateSignUpRequest(req SignUpRequest, reserved ...string) []FieldError {
	var errs errorList

	requiredEmail(&errs, req.Email)
	password(&errs, "password", req.Password)
	errs.required("fullName", req.FullName, 200)
	if isReserved(req.FullName, reserved) {
		errs.add("fullName", "fullName is reserved")
	}

	return errs
}

// ValidateSignInRequest checks that both credentials are present.
func ValidateSignInRequest(email, password string) []FieldError {
	var errs errorList

	if strings.TrimSpace(email) == "" {
		errs.add("email", "email is required")
	}
	if password == "" {
		errs.add("password", "password is required")
	}

	return errs
}

// ValidateRecoveryRequest validates a password recovery request.
func ValidateRecoveryRequest(email string) []FieldError {
	var errs errorList
	requiredEmail(&errs, email)
	return errs
}

// ValidatePasswordUpdate checks the new password and its confirmation.
func ValidatePasswordUpdate(newPassword, confirmation string) []FieldError {
	var errs errorList

	password(&errs, "password", newPassword)
	if newPassword != confirmation {
		errs.add("confirmPassword", "passwords do not match")
	}

	return errs
}

// ValidateMetadataPatch rejects empty patches, keys clients may not write
// and reserved display names.
func ValidateMetadataPatch(patch map[string]any, reserved ...string) []FieldError {
	var errs errorList

	if len(patch) == 0 {
		errs.add("metadata", "metadata must contain at least one key")
	}
	for _, key := range protectedMetadataKeys {
		if _, ok := patch[key]; ok {
			errs.add("metadata."+key, "%s cannot be changed", key)
		}
	}
	if name, ok := patch[auth.MetaFullName]; ok {
		s, isString := name.(string)
		switch {
		case !isString || strings.TrimSpace(s) == "":
			errs.add("metadata."+auth.MetaFullName, "%s must be a non-empty string", auth.MetaFullName)
		case isReserved(s, reserved):
			errs.add("metadata."+auth.MetaFullName, "%s is reserved", auth.MetaFullName)
		}
	}

	return errs
}

func requiredEmail(errs *errorList, v string) {
	if strings.TrimSpace(v) == "" {
		errs.add("email", "email is required")
		return
	}
	errs.email("email", v, 254)
}

func password(errs *errorList, field, v string) {
	if len(v) < auth.MinPasswordLength {
		errs.add(field, "%s must be at least %d characters", field, auth.MinPasswordLength)
	}
}

func isReserved(name string, reserved []string) bool {
	name = strings.TrimSpace(name)
	for _, r := range reserved {
		if r != "" && name == r {
			return true
		}
	}
	return false
}
