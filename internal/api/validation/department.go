package validation

// DepartmentRequest mirrors the fields needed for create department validation.
type DepartmentRequest struct {
	Name           string
	HODName        string
	IntakeCapacity *int
}

// ValidateCreateDepartmentRequest validates a create department request.
func ValidateCreateDepartmentRequest(req DepartmentRequest) []FieldError {
	var errs errorList

	errs.required("name", req.Name, 200)
	errs.maxLen("hodName", req.HODName, 200)
	if req.IntakeCapacity != nil && *req.IntakeCapacity < 1 {
		errs.add("intakeCapacity", "intakeCapacity must be at least 1")
	}

	return errs
}

// UpdateDepartmentRequest mirrors the fields needed for update department validation.
// Nil fields are not validated.
type UpdateDepartmentRequest struct {
	Name           *string
	HODName        *string
	IntakeCapacity *int
}

// ValidateUpdateDepartmentRequest validates only non-nil fields. An
// intakeCapacity of 0 clears the value.
func ValidateUpdateDepartmentRequest(req UpdateDepartmentRequest) []FieldError {
	var errs errorList

	if req.Name != nil {
		errs.required("name", *req.Name, 200)
	}
	if req.HODName != nil {
		errs.maxLen("hodName", *req.HODName, 200)
	}
	if req.IntakeCapacity != nil && *req.IntakeCapacity < 0 {
		errs.add("intakeCapacity", "intakeCapacity must not be negative")
	}

	return errs
}
